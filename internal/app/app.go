package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jgivc/nupkgreports/internal/adapter/nupkgadapter"
	"github.com/jgivc/nupkgreports/internal/common"
	"github.com/jgivc/nupkgreports/internal/config"
	"github.com/jgivc/nupkgreports/internal/entity"
	"github.com/jgivc/nupkgreports/internal/repository/sheet"
	"github.com/jgivc/nupkgreports/internal/service/report"
	"github.com/jgivc/nupkgreports/internal/storage/index"
	"github.com/spf13/afero"
)

const outputDirPerm = 0o755

type App struct {
	cfg *config.Config
	fs  afero.Fs
	out io.Writer
	now func() time.Time
	log *slog.Logger
}

func New(cfg *config.Config) (*App, error) {
	log, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg: cfg,
		fs:  afero.NewOsFs(),
		out: os.Stdout,
		now: time.Now,
		log: log.With(slog.String("run_id", uuid.NewString())),
	}, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	lo := &slog.HandlerOptions{}
	switch level {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidLogLevel, level)
	}

	return slog.New(slog.NewTextHandler(w, lo)), nil
}

// Run builds the four reports for the archives in inputDir.
func (a *App) Run(ctx context.Context, inputDir, outputDir string) error {
	a.log.Info("Start", slog.String("input_dir", inputDir), slog.String("output_dir", outputDir))

	if err := a.fs.MkdirAll(outputDir, outputDirPerm); err != nil {
		return fmt.Errorf("cannot create output dir: %w", err)
	}

	indexerCfg := a.cfg.IndexerConfig
	indexerCfg.WorkDir = inputDir

	inspector := nupkgadapter.NewNupkgAdapterWithFS(a.fs, a.now(), a.log)
	a.log.Debug("Harvest cutoff", slog.Time("cutoff", inspector.Cutoff()))

	store := index.NewIndexStorageWithFS(a.fs, inspector, &indexerCfg, a.log)
	repo := sheet.NewSheetRepositoryWithFS(a.fs, &a.cfg.SheetConfig, a.log)
	srv := report.NewReportService(store, repo, a.cfg.IndexerConfig.ContinueOnError, a.log)

	summary, err := srv.Generate(ctx, outputDir)
	if summary != nil {
		a.printSummary(summary)
	}
	if err != nil {
		return fmt.Errorf("cannot generate reports: %w", err)
	}

	a.log.Info("Done")

	return nil
}

func (a *App) printSummary(summary *entity.ReportSummary) {
	fmt.Fprintf(a.out, "Packages: %d\n", summary.Packages)
	for i, info := range summary.Reports {
		if info.Err != nil {
			fmt.Fprintf(a.out, "%d. %s -> %s, failed: %s\n", i+1, info.Filter, info.Path, info.Err)

			continue
		}

		fmt.Fprintf(a.out, "%d. %s -> %s, rows: %d\n", i+1, info.Filter, info.Path, info.Rows)
	}
}

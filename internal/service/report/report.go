package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jgivc/nupkgreports/internal/config"
	"github.com/jgivc/nupkgreports/internal/entity"
)

type PackageStorage interface {
	Scan(ctx context.Context) ([]*entity.Package, error)
}

type ReportRepository interface {
	Write(ctx context.Context, outputPath string, filter entity.Filter, packages []*entity.Package) (int, error)
}

type ReportService struct {
	store           PackageStorage
	repo            ReportRepository
	continueOnError bool
	log             *slog.Logger
}

func NewReportService(store PackageStorage, repo ReportRepository, continueOnError bool, log *slog.Logger) *ReportService {
	return &ReportService{
		store:           store,
		repo:            repo,
		continueOnError: continueOnError,
		log:             log.With(slog.String("item", "ReportService")),
	}
}

// Generate scans the packages once and writes one workbook per filter into outputDir.
func (s *ReportService) Generate(ctx context.Context, outputDir string) (*entity.ReportSummary, error) {
	packages, err := s.store.Scan(ctx)
	if err != nil {
		s.log.Error("Cannot scan", slog.Any("error", err))

		return nil, fmt.Errorf("cannot scan packages: %w", err)
	}

	s.log.Info("Scan packages", slog.Int("count", len(packages)))

	summary := &entity.ReportSummary{Packages: len(packages)}

	var errs []error
	for _, filter := range entity.Filters() {
		outputPath := filepath.Join(outputDir, filter.String()+config.ReportExt)

		rows, err := s.repo.Write(ctx, outputPath, filter, packages)
		summary.Reports = append(summary.Reports, entity.ReportInfo{
			Filter: filter,
			Path:   outputPath,
			Rows:   rows,
			Err:    err,
		})

		if err == nil {
			continue
		}

		s.log.Error("Cannot write report", slog.String("report", filter.String()), slog.Any("error", err))
		if !s.continueOnError {
			return summary, fmt.Errorf("cannot write %s report: %w", filter, err)
		}

		errs = append(errs, fmt.Errorf("cannot write %s report: %w", filter, err))
	}

	return summary, errors.Join(errs...)
}

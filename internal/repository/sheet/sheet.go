package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jgivc/nupkgreports/internal/common"
	"github.com/jgivc/nupkgreports/internal/config"
	"github.com/jgivc/nupkgreports/internal/entity"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

const defaultSheetName = "Sheet1"

type sheetRepository struct {
	fs  afero.Fs
	cfg *config.SheetConfig
	log *slog.Logger
}

func NewSheetRepository(cfg *config.SheetConfig, log *slog.Logger) *sheetRepository {
	return NewSheetRepositoryWithFS(afero.NewOsFs(), cfg, log)
}

func NewSheetRepositoryWithFS(fs afero.Fs, cfg *config.SheetConfig, log *slog.Logger) *sheetRepository {
	return &sheetRepository{
		fs:  fs,
		cfg: cfg,
		log: log.With(slog.String("item", "SheetRepository")),
	}
}

// Write stores one report workbook and returns the number of rows written.
// Packages with no folders left after filtering get no row.
func (r *sheetRepository) Write(ctx context.Context, outputPath string, filter entity.Filter, packages []*entity.Package) (rows int, err error) {
	log := r.log.With(slog.String("op", "Write"), slog.String("report", filter.String()))

	wb := excelize.NewFile()
	defer func() {
		if cerr := wb.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: cannot close workbook: %w", common.ErrOutputWrite, cerr)
		}
	}()

	rows, err = r.fill(ctx, wb, filter, packages)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", common.ErrOutputWrite, outputPath, err)
	}

	if err := r.save(wb, outputPath); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", common.ErrOutputWrite, outputPath, err)
	}

	log.Info("Report written", slog.String("path", outputPath), slog.Int("rows", rows))

	return rows, nil
}

func (r *sheetRepository) fill(ctx context.Context, wb *excelize.File, filter entity.Filter, packages []*entity.Package) (int, error) {
	name := filter.String()
	if err := wb.SetSheetName(defaultSheetName, name); err != nil {
		return 0, fmt.Errorf("cannot name sheet: %w", err)
	}

	sw, err := wb.NewStreamWriter(name)
	if err != nil {
		return 0, fmt.Errorf("cannot create stream writer: %w", err)
	}

	for i, width := range r.cfg.ColumnWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return 0, fmt.Errorf("cannot set column %d width: %w", i+1, err)
		}
	}

	row := 1
	for _, pkg := range packages {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		folders := filter.Apply(pkg)
		if len(folders) == 0 {
			continue
		}

		values := make([]interface{}, 0, len(folders)+1)
		values = append(values, pkg.ID)
		for _, folder := range folders {
			values = append(values, folder.TargetFramework)
		}

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return 0, err
		}

		if err := sw.SetRow(cell, values); err != nil {
			return 0, fmt.Errorf("cannot write row %d: %w", row, err)
		}

		row++
	}

	if err := sw.Flush(); err != nil {
		return 0, fmt.Errorf("cannot flush sheet: %w", err)
	}

	return row - 1, nil
}

func (r *sheetRepository) save(wb *excelize.File, outputPath string) (err error) {
	file, err := r.fs.Create(outputPath)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	if _, err := wb.WriteTo(file); err != nil {
		return fmt.Errorf("cannot write file: %w", err)
	}

	return nil
}

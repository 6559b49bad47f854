package index

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/jgivc/nupkgreports/internal/common"
	"github.com/jgivc/nupkgreports/internal/config"
	"github.com/jgivc/nupkgreports/internal/entity"
	"github.com/jgivc/nupkgreports/internal/util"
	"github.com/spf13/afero"
)

type ArchiveInspector interface {
	Inspect(archivePath string) (*entity.Package, error)
}

type indexStorage struct {
	running   atomic.Bool
	fs        afero.Fs
	inspector ArchiveInspector
	cfg       *config.IndexerConfig
	log       *slog.Logger
}

func NewIndexStorage(inspector ArchiveInspector, cfg *config.IndexerConfig, log *slog.Logger) *indexStorage {
	return NewIndexStorageWithFS(afero.NewOsFs(), inspector, cfg, log)
}

func NewIndexStorageWithFS(fs afero.Fs, inspector ArchiveInspector, cfg *config.IndexerConfig, log *slog.Logger) *indexStorage {
	return &indexStorage{
		fs:        fs,
		inspector: inspector,
		cfg:       cfg,
		log:       log.With(slog.String("item", "IndexStorage")),
	}
}

// Scan inspects every archive in the work dir, one at a time, in file name order.
func (i *indexStorage) Scan(ctx context.Context) ([]*entity.Package, error) {
	if !i.running.CompareAndSwap(false, true) {
		return nil, common.ErrScanAlreadyRunning
	}
	defer i.running.Store(false)

	archives, err := i.listArchives()
	if err != nil {
		return nil, err
	}

	i.log.Info("Found archives", slog.String("dir", i.cfg.WorkDir), slog.Int("count", len(archives)))

	packages := make([]*entity.Package, 0, len(archives))
	for _, archivePath := range archives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pkg, err := i.inspector.Inspect(archivePath)
		if err != nil {
			if !i.cfg.ContinueOnError {
				return nil, fmt.Errorf("cannot inspect archive: %w", err)
			}

			i.log.Warn("Skip archive", slog.String("path", archivePath), slog.Any("error", err))

			continue
		}

		i.log.Debug("Found package", slog.String("id", pkg.ID), slog.String("path", archivePath))
		packages = append(packages, pkg)
	}

	return packages, nil
}

func (i *indexStorage) listArchives() ([]string, error) {
	// afero.ReadDir returns entries sorted by name.
	entries, err := afero.ReadDir(i.fs, i.cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read archive dir %s: %w", i.cfg.WorkDir, err)
	}

	var archives []string
	for _, entry := range entries {
		if entry.IsDir() || !util.HasExt(entry.Name(), i.cfg.ArchiveExt) {
			continue
		}

		archives = append(archives, filepath.Join(i.cfg.WorkDir, entry.Name()))
	}

	return archives, nil
}

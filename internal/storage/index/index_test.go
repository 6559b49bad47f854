package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jgivc/nupkgreports/internal/common"
	"github.com/jgivc/nupkgreports/internal/config"
	"github.com/jgivc/nupkgreports/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const workDir = "/packages"

type inspectorMock struct {
	mock.Mock
}

func (m *inspectorMock) Inspect(archivePath string) (*entity.Package, error) {
	args := m.Called(archivePath)
	pkg, _ := args.Get(0).(*entity.Package)

	return pkg, args.Error(1)
}

func newTestStorage(t *testing.T, files []string, inspector ArchiveInspector, continueOnError bool) *indexStorage {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(workDir, os.ModeDir))
	for _, name := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(workDir, name), []byte("zip"), 0o644))
	}
	require.NoError(t, fs.MkdirAll(filepath.Join(workDir, "nested.nupkg"), os.ModeDir))

	cfg := &config.IndexerConfig{
		WorkDir:         workDir,
		ArchiveExt:      config.DefaultArchiveExt,
		ContinueOnError: continueOnError,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	return NewIndexStorageWithFS(fs, inspector, cfg, log)
}

func TestScan(t *testing.T) {
	inspector := &inspectorMock{}
	inspector.On("Inspect", "/packages/A.1.0.0.nupkg").Return(&entity.Package{ID: "A"}, nil).Once()
	inspector.On("Inspect", "/packages/B.2.0.0.NUPKG").Return(&entity.Package{ID: "B"}, nil).Once()
	inspector.On("Inspect", "/packages/c.1.0.0.nupkg").Return(&entity.Package{ID: "c"}, nil).Once()

	s := newTestStorage(t, []string{"c.1.0.0.nupkg", "readme.txt", "B.2.0.0.NUPKG", "A.1.0.0.nupkg", "A.1.0.0.snupkg"}, inspector, false)

	packages, err := s.Scan(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(packages))
	for _, pkg := range packages {
		ids = append(ids, pkg.ID)
	}
	require.Equal(t, []string{"A", "B", "c"}, ids)
	inspector.AssertExpectations(t)
}

func TestScanEmptyDir(t *testing.T) {
	inspector := &inspectorMock{}
	s := newTestStorage(t, nil, inspector, false)

	packages, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Empty(t, packages)
	inspector.AssertNotCalled(t, "Inspect", mock.Anything)
}

func TestScanMissingDir(t *testing.T) {
	s := newTestStorage(t, nil, &inspectorMock{}, false)
	s.cfg.WorkDir = "/missing"

	_, err := s.Scan(context.Background())
	require.Error(t, err)
}

func TestScanAbortsOnError(t *testing.T) {
	inspector := &inspectorMock{}
	inspector.On("Inspect", "/packages/A.nupkg").Return(nil, fmt.Errorf("%w: broken", common.ErrArchiveRead)).Once()

	s := newTestStorage(t, []string{"A.nupkg", "B.nupkg"}, inspector, false)

	_, err := s.Scan(context.Background())
	require.ErrorIs(t, err, common.ErrArchiveRead)
	inspector.AssertNotCalled(t, "Inspect", "/packages/B.nupkg")
}

func TestScanContinueOnError(t *testing.T) {
	inspector := &inspectorMock{}
	inspector.On("Inspect", "/packages/A.nupkg").Return(nil, fmt.Errorf("%w: broken", common.ErrArchiveRead)).Once()
	inspector.On("Inspect", "/packages/B.nupkg").Return(&entity.Package{ID: "B"}, nil).Once()

	s := newTestStorage(t, []string{"A.nupkg", "B.nupkg"}, inspector, true)

	packages, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, packages, 1)
	require.Equal(t, "B", packages[0].ID)
}

func TestScanCanceled(t *testing.T) {
	s := newTestStorage(t, []string{"A.nupkg"}, &inspectorMock{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scan(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScanAlreadyRunning(t *testing.T) {
	s := newTestStorage(t, nil, &inspectorMock{}, false)
	s.running.Store(true)

	_, err := s.Scan(context.Background())
	require.ErrorIs(t, err, common.ErrScanAlreadyRunning)
}

package app

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jgivc/nupkgreports/internal/common"
	"github.com/jgivc/nupkgreports/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func buildArchive(t *testing.T, id string, items map[string]time.Time) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: id + ".nuspec", Modified: testNow})
	require.NoError(t, err)
	_, err = w.Write([]byte("<package><metadata><id>" + id + "</id><version>1.0.0</version></metadata></package>"))
	require.NoError(t, err)

	for name, modified := range items {
		_, err := zw.CreateHeader(&zip.FileHeader{Name: name, Modified: modified})
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func newTestApp(t *testing.T, fs afero.Fs, continueOnError bool) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.IndexerConfig.ContinueOnError = continueOnError

	var out bytes.Buffer
	a := &App{
		cfg: cfg,
		fs:  fs,
		out: &out,
		now: func() time.Time { return testNow },
		log: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})),
	}

	return a, &out
}

func readRows(t *testing.T, fs afero.Fs, name string) [][]string {
	t.Helper()

	data, err := afero.ReadFile(fs, "/out/"+name+".xlsx")
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(name)
	require.NoError(t, err)

	return rows
}

func TestRun(t *testing.T) {
	old := testNow.Add(-10 * 24 * time.Hour)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/Foo.1.0.0.nupkg", buildArchive(t, "Foo", map[string]time.Time{
		"lib/net6.0/Foo.dll":     old,
		"lib/netstandard2.0/_._": testNow,
	}), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/Bar.2.0.0.nupkg", buildArchive(t, "Bar", map[string]time.Time{
		"lib/net45/_._":          testNow,
		"ref/netstandard2.0/_._": testNow,
	}), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/Baz.1.0.0.nupkg", buildArchive(t, "Baz", map[string]time.Time{
		"lib/net8.0/Baz.dll":                 testNow,
		"runtimes/win-x64/native/Baz.dll":    old,
		"runtimes/linux-x64/native/libbz.so": old,
	}), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/notes.txt", []byte("skip me"), 0o644))

	a, out := newTestApp(t, fs, false)
	require.NoError(t, a.Run(context.Background(), "/in", "/out"))

	require.Equal(t, [][]string{
		{"Bar", "net45", "netstandard2.0"},
		{"Baz", "net8.0", "runtimes/win-x64/native"},
		{"Foo", "net6.0", "netstandard2.0"},
	}, readRows(t, fs, "all"))

	require.Equal(t, [][]string{
		{"Baz", "runtimes/win-x64/native"},
		{"Foo", "net6.0"},
	}, readRows(t, fs, "harvested"))

	require.Equal(t, [][]string{
		{"Bar", "net45", "netstandard2.0"},
		{"Foo", "netstandard2.0"},
	}, readRows(t, fs, "placeholders"))

	require.Equal(t, [][]string{
		{"Baz", "net8.0", "runtimes/win-x64/native"},
		{"Foo", "net6.0"},
	}, readRows(t, fs, "nonplaceholders"))

	require.Contains(t, out.String(), "Packages: 3\n")
	require.Contains(t, out.String(), "2. harvested -> /out/harvested.xlsx, rows: 2\n")
}

func TestRunEmptyInput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/in", 0o755))

	a, _ := newTestApp(t, fs, false)
	require.NoError(t, a.Run(context.Background(), "/in", "/out"))

	for _, name := range []string{"all", "harvested", "placeholders", "nonplaceholders"} {
		require.Empty(t, readRows(t, fs, name), name)
	}
}

func TestRunBrokenArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/A.nupkg", []byte("broken"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/B.nupkg", buildArchive(t, "B", map[string]time.Time{
		"lib/net6.0/B.dll": testNow,
	}), 0o644))

	t.Run("abort", func(t *testing.T) {
		a, _ := newTestApp(t, fs, false)

		err := a.Run(context.Background(), "/in", "/out-abort")
		require.ErrorIs(t, err, common.ErrArchiveRead)

		exists, err := afero.Exists(fs, "/out-abort/all.xlsx")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("continue", func(t *testing.T) {
		a, _ := newTestApp(t, fs, true)

		require.NoError(t, a.Run(context.Background(), "/in", "/out"))
		require.Equal(t, [][]string{{"B", "net6.0"}}, readRows(t, fs, "all"))
	})
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError} {
		_, err := newLogger(level, io.Discard)
		require.NoError(t, err)
	}

	_, err := newLogger("verbose", io.Discard)
	require.ErrorIs(t, err, common.ErrInvalidLogLevel)
}

package nupkgadapter

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jgivc/nupkgreports/internal/common"
	"github.com/jgivc/nupkgreports/internal/entity"
	"github.com/jgivc/nupkgreports/internal/util"
	"github.com/spf13/afero"
)

const (
	// Assets older than this are assumed to be harvested from a previous build.
	HarvestAge = 3 * 24 * time.Hour

	DirRef      = "ref"
	DirLib      = "lib"
	DirRuntimes = "runtimes"

	assemblyExt       = ".dll"
	placeholderMarker = "_._"
)

// group is a framework specific group of archive items, e.g. everything under lib/net6.0/.
type group struct {
	folder         string
	items          []string
	hasEmptyFolder bool
}

type nupkgAdapter struct {
	fs     afero.Fs
	cutoff time.Time
	log    *slog.Logger
}

func NewNupkgAdapter(now time.Time, log *slog.Logger) *nupkgAdapter {
	return NewNupkgAdapterWithFS(afero.NewOsFs(), now, log)
}

func NewNupkgAdapterWithFS(fs afero.Fs, now time.Time, log *slog.Logger) *nupkgAdapter {
	return &nupkgAdapter{
		fs:     fs,
		cutoff: now.Add(-HarvestAge),
		log:    log.With(slog.String("item", "NupkgAdapter")),
	}
}

func (a *nupkgAdapter) Cutoff() time.Time {
	return a.cutoff
}

// Inspect reads one package archive and returns its report view.
func (a *nupkgAdapter) Inspect(archivePath string) (*entity.Package, error) {
	file, err := a.fs.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrArchiveRead, archivePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrArchiveRead, archivePath, err)
	}

	zr, err := zip.NewReader(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrArchiveRead, archivePath, err)
	}

	ns, err := readNuspec(zr.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrArchiveRead, archivePath, err)
	}

	entries := indexEntries(zr.File)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var folders []entity.Folder
	for _, dir := range []string{DirRef, DirLib, DirRuntimes} {
		dirFolders, err := a.getFolders(getGroups(names, dir), dir, entries)
		if err != nil {
			return nil, fmt.Errorf("cannot get %s folders of %s: %w", dir, archivePath, err)
		}

		folders = append(folders, dirFolders...)
	}

	pkg := &entity.Package{
		ID:         ns.Metadata.ID,
		Folders:    entity.NormalizeFolders(folders),
		SourcePath: archivePath,
	}

	a.log.Debug("Inspected package", slog.String("id", pkg.ID), slog.String("path", archivePath), slog.Int("folders", len(pkg.Folders)))

	return pkg, nil
}

func (a *nupkgAdapter) getFolders(groups []group, dir string, entries map[string]*zip.File) ([]entity.Folder, error) {
	var folders []entity.Folder

	for _, g := range groups {
		if dir == DirRuntimes {
			for _, item := range g.items {
				if !util.HasExt(item, assemblyExt) {
					continue
				}

				entry, err := lookup(entries, item)
				if err != nil {
					return nil, err
				}

				folders = append(folders, entity.Folder{
					TargetFramework: util.ParentPath(item),
					IsPlaceholder:   g.hasEmptyFolder,
					IsHarvested:     entry.Modified.Before(a.cutoff),
				})
			}

			continue
		}

		harvested, err := a.isHarvested(g, entries)
		if err != nil {
			return nil, err
		}

		folders = append(folders, entity.Folder{
			TargetFramework: shortFolderName(g.folder),
			IsPlaceholder:   g.hasEmptyFolder,
			IsHarvested:     harvested,
		})
	}

	return folders, nil
}

// isHarvested is true when the group has assemblies and all of them predate the cutoff.
func (a *nupkgAdapter) isHarvested(g group, entries map[string]*zip.File) (bool, error) {
	found := false

	for _, item := range g.items {
		if !util.HasExt(item, assemblyExt) {
			continue
		}

		entry, err := lookup(entries, item)
		if err != nil {
			return false, err
		}

		if !entry.Modified.Before(a.cutoff) {
			return false, nil
		}
		found = true
	}

	return found, nil
}

// getGroups groups the items under dir by the framework folder that follows it.
// Items placed directly under lib/ belong to the net folder.
func getGroups(names []string, dir string) []group {
	prefix := dir + "/"

	var groups []group
	index := make(map[string]int)

	for _, name := range names {
		if !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}

		rest := name[len(prefix):]
		folder, _, nested := strings.Cut(rest, "/")
		if !nested {
			if dir != DirLib {
				continue
			}
			folder = ""
		}

		i, exists := index[strings.ToLower(folder)]
		if !exists {
			i = len(groups)
			index[strings.ToLower(folder)] = i
			groups = append(groups, group{folder: folder})
		}

		groups[i].items = append(groups[i].items, name)
		if path.Base(name) == placeholderMarker {
			groups[i].hasEmptyFolder = true
		}
	}

	return groups
}

// indexEntries maps normalized item paths to archive entries, skipping directories.
func indexEntries(files []*zip.File) map[string]*zip.File {
	entries := make(map[string]*zip.File, len(files))
	for _, f := range files {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}

		entries[entryName(f.Name)] = f
	}

	return entries
}

func lookup(entries map[string]*zip.File, item string) (*zip.File, error) {
	entry, exists := entries[item]
	if !exists {
		return nil, fmt.Errorf("%w: %s", common.ErrEntryLookup, item)
	}

	return entry, nil
}

// entryName normalizes separators and undoes the percent encoding of OPC part names.
func entryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}

	return name
}

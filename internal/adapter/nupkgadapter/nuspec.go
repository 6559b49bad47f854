package nupkgadapter

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/jgivc/nupkgreports/internal/common"
	"github.com/jgivc/nupkgreports/internal/util"
)

const nuspecExt = ".nuspec"

// Nuspec holds the manifest fields the reports need. Element names are matched
// in any namespace, nuspec schemas differ between NuGet versions.
type Nuspec struct {
	Metadata struct {
		ID      string `xml:"id"`
		Version string `xml:"version"`
	} `xml:"metadata"`
}

func readNuspec(files []*zip.File) (*Nuspec, error) {
	var manifest *zip.File
	for _, f := range files {
		name := entryName(f.Name)
		if !strings.Contains(name, "/") && util.HasExt(name, nuspecExt) {
			manifest = f

			break
		}
	}

	if manifest == nil {
		return nil, common.ErrManifestNotFound
	}

	r, err := manifest.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open manifest %s: %w", manifest.Name, err)
	}
	defer r.Close()

	var ns Nuspec
	if err := xml.NewDecoder(r).Decode(&ns); err != nil {
		return nil, fmt.Errorf("cannot parse manifest %s: %w", manifest.Name, err)
	}

	ns.Metadata.ID = strings.TrimSpace(ns.Metadata.ID)
	if ns.Metadata.ID == "" {
		return nil, fmt.Errorf("manifest %s has no package id", manifest.Name)
	}

	return &ns, nil
}

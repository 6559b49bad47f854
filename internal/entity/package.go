package entity

// Package is the report view of one package archive.
type Package struct {
	ID         string   // Package identifier from the nuspec
	Folders    []Folder // Deduplicated, sorted by TargetFramework
	SourcePath string   // Path of the archive on disk
}

type ReportInfo struct {
	Filter Filter
	Path   string
	Rows   int
	Err    error
}

type ReportSummary struct {
	Packages int
	Reports  []ReportInfo
}

package common

import "fmt"

var (
	ErrArchiveRead        = fmt.Errorf("cannot read package archive")
	ErrManifestNotFound   = fmt.Errorf("manifest not found")
	ErrEntryLookup        = fmt.Errorf("archive entry not found")
	ErrOutputWrite        = fmt.Errorf("cannot write report")
	ErrScanAlreadyRunning = fmt.Errorf("scan process has already started")
	ErrInvalidLogLevel    = fmt.Errorf("unknown log level")
)

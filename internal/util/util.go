package util

import (
	"path/filepath"
	"strings"
)

// HasExt reports whether name ends with ext, ignoring case.
func HasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

// ParentPath returns the part of a slash separated path before the last separator.
func ParentPath(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}

	return ""
}

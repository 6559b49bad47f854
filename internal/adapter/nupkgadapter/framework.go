package nupkgadapter

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	frameworkNet         = "net"
	frameworkNetStandard = "netstandard"
	frameworkNetCoreApp  = "netcoreapp"

	// First .NET version written with a dotted version in folder names (net5.0).
	netDottedMajor = 5
)

var (
	folderNameRegexp = regexp.MustCompile(`^([a-z]+?)([0-9][0-9.]*)?(-.+)?$`)

	// Longest prefix first: .netcore is a prefix of .netcoreapp.
	longIdentifiers = []struct{ long, short string }{
		{".netframework", frameworkNet},
		{".netstandard", frameworkNetStandard},
		{".netcoreapp", frameworkNetCoreApp},
		{".netcore", "netcore"},
	}
)

// shortFolderName converts a framework folder name to its canonical short form.
// Folder names that do not look like a framework are returned lowercased.
func shortFolderName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return frameworkNet
	}

	if strings.HasPrefix(lower, "portable-") {
		return lower
	}

	lower = expandLongIdentifier(lower)

	m := folderNameRegexp.FindStringSubmatch(lower)
	if m == nil {
		return lower
	}

	identifier, version, profile := m[1], m[2], m[3]
	parts := versionParts(version)

	switch identifier {
	case frameworkNet:
		if len(parts) == 0 {
			return frameworkNet + profile
		}

		if parts[0] >= netDottedMajor {
			return frameworkNet + dotted(parts) + profile
		}

		return frameworkNet + compact(parts) + profile
	case frameworkNetStandard, frameworkNetCoreApp:
		if len(parts) == 0 {
			return identifier + profile
		}

		return identifier + dotted(parts) + profile
	}

	return lower
}

func expandLongIdentifier(name string) string {
	for _, li := range longIdentifiers {
		if !strings.HasPrefix(name, li.long) {
			continue
		}

		rest := strings.TrimPrefix(name, li.long)
		rest = strings.TrimPrefix(rest, ",version=")
		rest = strings.TrimPrefix(rest, "v")

		if i := strings.Index(rest, ",profile="); i >= 0 {
			rest = rest[:i] + "-" + rest[i+len(",profile="):]
		}

		return li.short + rest
	}

	return name
}

// versionParts splits "4.6.2" or the compact "462" into numeric parts.
func versionParts(version string) []int {
	version = strings.Trim(version, ".")
	if version == "" {
		return nil
	}

	var fields []string
	if strings.Contains(version, ".") {
		fields = strings.Split(version, ".")
	} else {
		fields = strings.Split(version, "")
	}

	parts := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil
		}
		parts = append(parts, n)
	}

	return parts
}

func dotted(parts []int) string {
	major, minor := parts[0], 0
	if len(parts) > 1 {
		minor = parts[1]
	}

	return strconv.Itoa(major) + "." + strconv.Itoa(minor)
}

func compact(parts []int) string {
	for len(parts) > 2 && parts[len(parts)-1] == 0 {
		parts = parts[:len(parts)-1]
	}

	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(strconv.Itoa(p))
	}

	if len(parts) == 1 {
		sb.WriteString("0")
	}

	return sb.String()
}

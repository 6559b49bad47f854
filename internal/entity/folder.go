package entity

import "sort"

// Folder is one target framework asset group of a package.
// Two folders are the same when all three fields match.
type Folder struct {
	TargetFramework string // Short framework folder name (net6.0) or runtimes path (runtimes/win-x64/native)
	IsPlaceholder   bool   // Folder holds only the _._ marker
	IsHarvested     bool   // Assemblies were written before the harvest cutoff
}

// NormalizeFolders drops duplicate folders and sorts the rest by target framework.
func NormalizeFolders(folders []Folder) []Folder {
	seen := make(map[Folder]struct{}, len(folders))
	result := make([]Folder, 0, len(folders))

	for _, f := range folders {
		if _, exists := seen[f]; exists {
			continue
		}

		seen[f] = struct{}{}
		result = append(result, f)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.TargetFramework != b.TargetFramework {
			return a.TargetFramework < b.TargetFramework
		}

		if a.IsPlaceholder != b.IsPlaceholder {
			return !a.IsPlaceholder
		}

		return !a.IsHarvested && b.IsHarvested
	})

	return result
}

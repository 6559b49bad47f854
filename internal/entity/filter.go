package entity

const (
	FilterAll Filter = iota
	FilterHarvested
	FilterPlaceholders
	FilterNonPlaceholders
)

type Filter int

var filterNames = map[Filter]string{
	FilterAll:             "all",
	FilterHarvested:       "harvested",
	FilterPlaceholders:    "placeholders",
	FilterNonPlaceholders: "nonplaceholders",
}

// Filters returns every report filter in report order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterHarvested, FilterPlaceholders, FilterNonPlaceholders}
}

// String returns the lowercase name used for the sheet and the output file.
func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}

	return "unknown"
}

// Apply returns the package folders matching the filter, in package order.
func (f Filter) Apply(pkg *Package) []Folder {
	if f == FilterAll {
		return pkg.Folders
	}

	var folders []Folder
	for _, folder := range pkg.Folders {
		if f.match(folder) {
			folders = append(folders, folder)
		}
	}

	return folders
}

func (f Filter) match(folder Folder) bool {
	switch f {
	case FilterHarvested:
		return folder.IsHarvested && !folder.IsPlaceholder
	case FilterPlaceholders:
		return folder.IsPlaceholder
	case FilterNonPlaceholders:
		return !folder.IsPlaceholder
	}

	return true
}

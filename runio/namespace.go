package runio

import (
	"path/filepath"

	"github.com/karrick/godirwalk"
)

// IsRunName reports whether name belongs to the run namespace: a decimal
// integer, or a "_"-prefixed decimal integer for an in-progress merge output.
func IsRunName(name string) bool {
	if len(name) > 0 && name[0] == '_' {
		name = name[1:]
	}
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

// Scan walks dir and returns the names of run-namespace entries it contains.
// Subdirectories are not descended into; the namespace is flat.
func Scan(dir string) ([]string, error) {
	var names []string

	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(pathname string, dirent *godirwalk.Dirent) error {
			if dirent.IsDir() {
				if pathname == dir {
					return nil
				}
				return filepath.SkipDir
			}

			if IsRunName(dirent.Name()) {
				names = append(names, dirent.Name())
			}
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

package source

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
}

// skipFile reports files excluded from extraction: package markers, tests,
// and generated declaration files.
func skipFile(name string) bool {
	switch {
	case name == "__init__.py":
		return true
	case strings.HasSuffix(name, "_test.go"):
		return true
	case strings.HasSuffix(name, ".test.ts"), strings.HasSuffix(name, ".spec.ts"):
		return true
	case strings.HasSuffix(name, ".d.ts"):
		return true
	}
	return false
}

// DiscoverFiles walks root and returns the sorted root-relative paths of
// every extractable source file. Hidden directories, dependency/build
// directories and test files are skipped, as is anything matching one of the
// extra exclude globs (matched against the relative path and the base name).
func DiscoverFiles(root string, excludes []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || skipFile(name) {
			return nil
		}
		if _, ok := LanguageForPath(name); !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range excludes {
			if matched, _ := filepath.Match(pattern, rel); matched {
				return nil
			}
			if matched, _ := filepath.Match(pattern, name); matched {
				return nil
			}
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

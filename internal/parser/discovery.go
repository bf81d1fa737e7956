package parser

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// DiscoverSessionFiles returns every *.jsonl file under root that is not
// inside a subagents directory, ordered component by component.
func DiscoverSessionFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == "subagents" && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".jsonl" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(files, func(a, b string) int {
		return slices.Compare(
			strings.Split(filepath.ToSlash(a), "/"),
			strings.Split(filepath.ToSlash(b), "/"),
		)
	})
	return files, nil
}

// ProjectName is the first path component of path below root, or the
// name of its parent directory when path is outside root.
func ProjectName(path, root string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(filepath.Dir(path))
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	if first == "" || first == "." {
		return "unknown"
	}
	return first
}

// ReadableProject strips the encoded home directory from a project
// directory name, so "-home-pi-admin-panel" becomes "admin-panel" for
// home "/home/pi". The home directory itself reads "home (misc)".
func ReadableProject(raw, home string) string {
	if home == "" {
		return raw
	}
	encoded := EncodePath(home)
	if raw == encoded {
		return "home (misc)"
	}
	if name, ok := strings.CutPrefix(raw, encoded+"-"); ok && name != "" {
		return name
	}
	return raw
}

// EncodePath applies the projects directory naming: every character
// other than a letter, digit or '-' becomes '-'.
func EncodePath(path string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '-'
	}, filepath.ToSlash(filepath.Clean(path)))
}

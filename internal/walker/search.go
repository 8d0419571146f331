package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Search recursively finds entries under path whose name matches pattern,
// case-insensitively. The pattern is tried as a glob against the basename
// first; when it contains no glob metacharacters it also matches as a
// substring. Entries matching an exclusion pattern are skipped, recursively
// for directories. Results are absolute resolved paths in traversal order.
func (w *Walker) Search(path, pattern string, exclude []string) ([]string, error) {
	dir, err := w.guardedDir(path)
	if err != nil {
		return nil, err
	}

	var matches []string
	w.searchDir(dir, "", strings.ToLower(pattern), exclude, 1, &matches)
	return matches, nil
}

func (w *Walker) searchDir(dir, relPrefix, pattern string, exclude []string, depth int, matches *[]string) {
	if depth > maxDepth {
		w.logger.Warn("Maximum search depth reached, not descending further", "path", dir)
		return
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("Skipping unreadable directory during search", "path", dir, "error", err)
		return
	}

	for _, de := range dirEntries {
		rel := joinRel(relPrefix, de.Name())
		if excluded(rel, de.Name(), exclude) {
			continue
		}

		target, isDir, ok := w.classify(dir, de)
		if !ok {
			continue
		}

		if nameMatches(de.Name(), pattern) {
			*matches = append(*matches, filepath.Join(dir, de.Name()))
		}
		if isDir {
			w.searchDir(target, rel, pattern, exclude, depth+1, matches)
		}
	}
}

// nameMatches compares the lowercased basename against the lowercased
// pattern, as a glob and, for plain patterns, as a substring.
func nameMatches(name, pattern string) bool {
	lower := strings.ToLower(name)
	if ok, err := doublestar.Match(pattern, lower); err == nil && ok {
		return true
	}
	if !strings.ContainsAny(pattern, "*?[{") && strings.Contains(lower, pattern) {
		return true
	}
	return false
}

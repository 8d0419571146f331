// Package walker implements directory traversal for the server: flat and
// size-augmented listings, the recursive tree view, and glob search. Every
// traversal starts from a guarded root, re-validates symlinked directories
// through the guard before descending, and honors per-call exclusion
// patterns. Traversal order is lexicographic by name so output is
// reproducible for a given filesystem state.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"scopefs/internal/logging"
	"scopefs/internal/sandbox"
)

// Entry kinds reported in listings and tree nodes.
const (
	KindFile      = "file"
	KindDirectory = "directory"
)

// maxDepth bounds recursive traversal on pathologically deep trees.
const maxDepth = 25

// Entry is one direct child in a flat listing.
type Entry struct {
	Name       string
	IsDir      bool
	Size       int64 // files only
	ChildCount int   // directories only
}

// TreeNode is one node of the recursive tree view. Files carry no children;
// directories carry an ordered child list (omitted when empty).
type TreeNode struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Walker runs traversals under a containment guard.
type Walker struct {
	guard  *sandbox.Guard
	logger *logging.AppLogger
}

func New(guard *sandbox.Guard, logger *logging.AppLogger) *Walker {
	return &Walker{guard: guard, logger: logger}
}

// List returns the direct children of path: names and kinds only.
func (w *Walker) List(path string) ([]Entry, error) {
	dir, err := w.guardedDir(path)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entries = append(entries, Entry{Name: de.Name(), IsDir: w.entryIsDir(dir, de)})
	}
	return entries, nil
}

// ListWithSizes returns the direct children of path with byte sizes for
// files and direct-child counts for directories. sortBy is "name"
// (lexicographic, the default) or "size" (descending, ties keep name order).
func (w *Walker) ListWithSizes(path, sortBy string) ([]Entry, error) {
	if sortBy != "" && sortBy != "name" && sortBy != "size" {
		return nil, fmt.Errorf("invalid sortBy %q: must be \"name\" or \"size\"", sortBy)
	}

	dir, err := w.guardedDir(path)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := Entry{Name: de.Name(), IsDir: w.entryIsDir(dir, de)}
		if entry.IsDir {
			if children, err := os.ReadDir(filepath.Join(dir, de.Name())); err == nil {
				entry.ChildCount = len(children)
			}
		} else if info, err := de.Info(); err == nil {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
	}

	// ReadDir already sorts by name; a size sort stays stable on ties.
	if sortBy == "size" {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Size > entries[j].Size
		})
	}
	return entries, nil
}

// Tree builds the recursive tree view rooted at path, skipping entries that
// match any exclusion pattern (the whole subtree for directories).
func (w *Walker) Tree(path string, exclude []string) ([]*TreeNode, error) {
	dir, err := w.guardedDir(path)
	if err != nil {
		return nil, err
	}
	return w.walkTree(dir, "", exclude, 1), nil
}

// walkTree descends one directory level. relPrefix is the logical path from
// the traversal root, used for exclusion matching; dir is the real path on
// disk (they diverge below symlinked directories).
func (w *Walker) walkTree(dir, relPrefix string, exclude []string, depth int) []*TreeNode {
	if depth > maxDepth {
		w.logger.Warn("Maximum tree depth reached, not descending further", "path", dir)
		return nil
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("Skipping unreadable directory", "path", dir, "error", err)
		return nil
	}

	var nodes []*TreeNode
	for _, de := range dirEntries {
		rel := joinRel(relPrefix, de.Name())
		if excluded(rel, de.Name(), exclude) {
			continue
		}

		target, isDir, ok := w.classify(dir, de)
		if !ok {
			continue
		}

		node := &TreeNode{Name: de.Name()}
		if isDir {
			node.Type = KindDirectory
			node.Children = w.walkTree(target, rel, exclude, depth+1)
		} else {
			node.Type = KindFile
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// classify resolves one directory entry. Symlinks are re-validated through
// the guard; a link that escapes the allowed roots is skipped with a
// diagnostic rather than failing the traversal. The returned target is the
// real path to descend into for directories.
func (w *Walker) classify(dir string, de os.DirEntry) (target string, isDir bool, ok bool) {
	full := filepath.Join(dir, de.Name())
	if de.Type()&os.ModeSymlink == 0 {
		return full, de.IsDir(), true
	}

	rp, err := w.guard.CheckExisting(full)
	if err != nil {
		w.logger.Warn("Skipping symlink during traversal", "path", full, "error", err)
		return "", false, false
	}
	info, err := os.Stat(rp.Path)
	if err != nil {
		w.logger.Warn("Skipping unreadable symlink target", "path", full, "error", err)
		return "", false, false
	}
	return rp.Path, info.IsDir(), true
}

// entryIsDir reports whether a listing entry is a directory, following
// contained symlinks so linked directories list as directories.
func (w *Walker) entryIsDir(dir string, de os.DirEntry) bool {
	if de.Type()&os.ModeSymlink == 0 {
		return de.IsDir()
	}
	_, isDir, ok := w.classify(dir, de)
	return ok && isDir
}

// guardedDir resolves path through the guard and requires a directory.
func (w *Walker) guardedDir(path string) (string, error) {
	rp, err := w.guard.CheckExisting(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(rp.Path)
	if err != nil {
		return "", fmt.Errorf("cannot stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", path)
	}
	return rp.Path, nil
}

// excluded reports whether an entry matches any exclusion pattern, tested
// against both its path relative to the traversal root and its basename.
func excluded(rel, name string, patterns []string) bool {
	relSlash := filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if ok, err := doublestar.Match(pattern, relSlash); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func joinRel(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + string(filepath.Separator) + name
}

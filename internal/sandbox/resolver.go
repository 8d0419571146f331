// Package sandbox implements path resolution and containment for the server.
// A Resolver canonicalizes user-supplied paths — expanding ~, absolutizing,
// and dereferencing every symlink — and checks the result against a fixed set
// of allowed root directories. The Guard wraps the Resolver with the
// existence policy each operation needs.
//
// Containment is decided on the resolved path only. The path string the
// caller sent is never trusted: `..` segments, relative prefixes, and
// symlinked ancestors are all collapsed before the check.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scopefs/pkg/fileops"
)

// ResolvedPath is the outcome of resolving a candidate path: an absolute,
// symlink-free path plus whether the entry currently exists. Values are only
// constructed by Resolver.Resolve and must not be cached across calls — the
// filesystem can change between requests.
type ResolvedPath struct {
	Path   string
	Exists bool
}

// Resolver canonicalizes candidate paths and decides containment against the
// allowed roots. The root set is established once at startup and never
// mutated, so a Resolver is safe for concurrent use.
type Resolver struct {
	roots []string
}

// NewResolver builds a resolver over roots that are already absolute and
// symlink-resolved (config.ResolveRoots guarantees this).
func NewResolver(roots []string) *Resolver {
	cleaned := make([]string, len(roots))
	for i, root := range roots {
		cleaned[i] = filepath.Clean(root)
	}
	return &Resolver{roots: cleaned}
}

// Roots returns a copy of the allowed root set.
func (r *Resolver) Roots() []string {
	roots := make([]string, len(r.roots))
	copy(roots, r.roots)
	return roots
}

// Resolve canonicalizes candidate and checks it against the allowed roots.
//
// An existing path is fully symlink-resolved and the real path is checked.
// A non-existing path (a write or create target) has its deepest existing
// ancestor resolved and the untouched suffix reattached, so a symlinked
// parent cannot smuggle the target outside the roots.
func (r *Resolver) Resolve(candidate string) (ResolvedPath, error) {
	if strings.TrimSpace(candidate) == "" {
		return ResolvedPath{}, fmt.Errorf("path cannot be empty")
	}

	abs, err := filepath.Abs(fileops.ExpandPath(candidate))
	if err != nil {
		return ResolvedPath{}, fmt.Errorf("cannot resolve path %q: %w", candidate, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		if !r.contains(resolved) {
			return ResolvedPath{}, r.outOfBounds(candidate)
		}
		return ResolvedPath{Path: resolved, Exists: true}, nil
	}
	if !os.IsNotExist(err) {
		return ResolvedPath{}, fmt.Errorf("cannot resolve %q: %w", candidate, err)
	}

	resolved, err = r.resolveMissing(abs)
	if err != nil {
		return ResolvedPath{}, err
	}
	if !r.contains(resolved) {
		return ResolvedPath{}, r.outOfBounds(candidate)
	}
	return ResolvedPath{Path: resolved, Exists: false}, nil
}

// resolveMissing handles targets that do not exist yet: walk up to the
// deepest existing ancestor, resolve its symlinks, then reattach the
// non-existing suffix unchanged.
func (r *Resolver) resolveMissing(abs string) (string, error) {
	ancestor := filepath.Dir(abs)
	suffix := filepath.Base(abs)
	for {
		real, err := filepath.EvalSymlinks(ancestor)
		if err == nil {
			return filepath.Join(real, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("cannot resolve ancestor %q: %w", ancestor, err)
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			// Reached the filesystem root without an existing ancestor.
			return filepath.Join(ancestor, suffix), nil
		}
		suffix = filepath.Join(filepath.Base(ancestor), suffix)
		ancestor = parent
	}
}

// contains reports whether p equals an allowed root or sits beneath one.
// The comparison works at path-segment granularity via filepath.Rel, so
// /allowed-evil never matches the root /allowed.
func (r *Resolver) contains(p string) bool {
	p = filepath.Clean(p)
	for _, root := range r.roots {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		if rel == "." {
			return true
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func (r *Resolver) outOfBounds(candidate string) error {
	return fmt.Errorf("%w: %s (allowed: %s)", ErrOutOfBounds, candidate, strings.Join(r.roots, ", "))
}

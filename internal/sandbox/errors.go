package sandbox

import "errors"

// Sentinel errors surfaced to the dispatch layer; handlers classify failures
// with errors.Is. Every error produced here names the offending path.
var (
	// ErrOutOfBounds means the fully resolved path escapes every allowed root.
	ErrOutOfBounds = errors.New("access denied: path is outside allowed directories")

	// ErrNotFound means the operation required an existing entry and the
	// resolved path has none.
	ErrNotFound = errors.New("path does not exist")
)

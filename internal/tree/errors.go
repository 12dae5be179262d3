package tree

import "errors"

var (
	// ErrInvalidPath indicates a malformed path or segment.
	ErrInvalidPath = errors.New("invalid tree path")
	// ErrUnsupportedBackend indicates the session's database has no dialect.
	ErrUnsupportedBackend = errors.New("unsupported tree backend")
	// ErrCircularReference indicates a reparent that would place a node
	// inside its own subtree.
	ErrCircularReference = errors.New("circular tree reference")
)

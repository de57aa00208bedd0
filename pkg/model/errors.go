package model

import "github.com/cockroachdb/errors"

// Error taxonomy of a definition request. None of these are fatal to the
// serving process; the definition service turns them into empty results.
var (
	// ErrOutOfRange indicates a position outside any file's bounds.
	ErrOutOfRange = errors.New("position out of range")

	// ErrUnresolved indicates that no binding rule produced a declaration.
	ErrUnresolved = errors.New("reference unresolved")

	// ErrMalformedProgram indicates an internal invariant violation, such as
	// a traversal exceeding its depth bound or a cyclic inheritance graph.
	ErrMalformedProgram = errors.New("malformed program")
)

package document

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth bounds how deeply nested a document may be before the
// engines refuse to walk it.
const DefaultMaxDepth = 256

// ErrMaxDepthExceeded is returned when a document nests deeper than the
// configured limit.
var ErrMaxDepthExceeded = errors.New("maximum document depth exceeded")

// DepthError describes a document rejected by the depth guard.
type DepthError struct {
	Limit int
	Depth int
	Path  string
}

func (e *DepthError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: depth %d exceeds limit %d at %q", ErrMaxDepthExceeded, e.Depth, e.Limit, e.Path)
	}
	return fmt.Sprintf("%s: depth %d exceeds limit %d", ErrMaxDepthExceeded, e.Depth, e.Limit)
}

func (e *DepthError) Unwrap() error {
	return ErrMaxDepthExceeded
}

// IsDepthError reports whether err was caused by the depth guard.
func IsDepthError(err error) bool {
	return errors.Is(err, ErrMaxDepthExceeded)
}

// CheckDepth returns a *DepthError when any of docs nests deeper than limit.
// A non-positive limit selects DefaultMaxDepth.
func CheckDepth(limit int, docs ...Value) error {
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	for _, doc := range docs {
		if d := doc.Depth(); d > limit {
			return &DepthError{Limit: limit, Depth: d}
		}
	}
	return nil
}

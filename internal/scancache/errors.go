package scancache

import (
	"fmt"

	"sift/internal/apperr"
)

// ErrorKind classifies cache contract violations.
type ErrorKind string

const (
	KindSchemaMismatch ErrorKind = "schema_mismatch"
	KindRootMismatch   ErrorKind = "root_mismatch"
	KindCorrupt        ErrorKind = "corrupt"
)

// Error reports a cache that cannot be used for this run. It matches
// apperr.ErrCache; a rescan rebuilds the cache.
type Error struct {
	Kind     ErrorKind
	Path     string
	Found    string
	Expected string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindSchemaMismatch:
		return fmt.Sprintf("cache schema mismatch in %s: found %s, expected %s", e.Path, e.Found, e.Expected)
	case KindRootMismatch:
		return fmt.Sprintf("cache was generated for a different incoming_root (use --rescan to rebuild): cache %s, config %s", e.Found, e.Expected)
	default:
		return fmt.Sprintf("cache file is not valid JSON: %s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{apperr.ErrCache, e.Err}
	}
	return []error{apperr.ErrCache}
}

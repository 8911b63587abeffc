package textdb

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no stored line matches the requested ID.
var ErrNotFound = errors.New("record not found")

// DecodeError reports a single malformed stored line.
//
// Load paths recover from it locally: the line is logged and skipped, and
// the rest of the file is still loaded. It never propagates past a read.
type DecodeError struct {
	Line string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed line %q: %v", e.Line, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent failures a caller can act on.
// Structural problems in markup are never errors; they degrade the output instead.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoTables indicates the document contains no qualifying tables.
	// This is not a parse failure; callers decide whether to report it.
	ErrNoTables = errors.New("no tables found")

	// ErrIndexOutOfRange indicates an explicit table index outside the extracted range.
	// Use IndexOutOfRangeError for the valid range.
	ErrIndexOutOfRange = errors.New("table index out of range")

	// Acquisition Errors.

	// ErrUnsupportedSource indicates no connector can read the source location.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrFetchFailed indicates the source could not be read or downloaded.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrDecodeFailed indicates the source bytes could not be decoded to text.
	ErrDecodeFailed = errors.New("decode failed")

	// Output Errors.

	// ErrUnsupportedFormat indicates an unknown serialisation format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrStoreUnavailable indicates the history store is not configured.
	ErrStoreUnavailable = errors.New("history store unavailable")
)

// IndexOutOfRangeError reports an explicit table index that does not exist.
type IndexOutOfRangeError struct {
	Index int
	Count int
}

// Error implements the error interface.
func (e *IndexOutOfRangeError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("table index %d out of range: document has no tables", e.Index)
	}
	return fmt.Sprintf("table index %d out of range: found %d tables, valid range is 0..%d",
		e.Index, e.Count, e.Count-1)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

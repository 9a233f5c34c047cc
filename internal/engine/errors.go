package engine

import (
	"errors"
	"fmt"
)

// ErrNotReprocessable marks items with no reprocessing outputs. Most types
// in the catalog hit this; batch callers filter it rather than report it.
var ErrNotReprocessable = errors.New("item cannot be reprocessed")

// NotFoundError reports an item reference that resolved to nothing.
type NotFoundError struct {
	Ref string // the ID or name the caller supplied
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item not found: %s", e.Ref)
}

// AmbiguousError reports a display name shared by multiple catalog items.
// The caller must disambiguate, typically by switching to a type ID.
type AmbiguousError struct {
	Name    string
	Matches int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%d items match name %q", e.Matches, e.Name)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAmbiguous reports whether err is an AmbiguousError.
func IsAmbiguous(err error) bool {
	var amb *AmbiguousError
	return errors.As(err, &amb)
}

package crawler

import (
	"errors"
	"fmt"

	"github.com/nao1215/wikid/internal/model"
)

// ErrFetch is the sentinel wrapped by every fetch failure.
// Callers match it with errors.Is to tell transport problems apart from
// other failures.
var ErrFetch = errors.New("fetch failed")

// FetchError describes a failed retrieval of one document.
type FetchError struct {
	// ID is the document that could not be fetched.
	ID model.DocumentID

	// StatusCode is the HTTP status, or 0 for transport errors.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.ID, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.ID, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s failed", e.ID)
	}
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

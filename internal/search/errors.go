package search

import (
	"errors"
	"fmt"

	"github.com/nao1215/wikid/internal/crawler"
	"github.com/nao1215/wikid/internal/model"
)

var (
	// ErrFrontierExhausted is reported when no unvisited document remains
	// reachable and the destination was never seen.
	ErrFrontierExhausted = model.ErrFrontierExhausted

	// ErrBudgetExceeded is reported when MaxExpansions was reached.
	ErrBudgetExceeded = model.ErrBudgetExceeded

	// ErrStartRequired is returned when Options.Start is empty.
	ErrStartRequired = errors.New("start document is required")

	// ErrDestinationRequired is returned when Options.Destination is empty.
	ErrDestinationRequired = errors.New("destination document is required")

	// ErrInvalidOptions is wrapped by option validation failures.
	ErrInvalidOptions = errors.New("invalid search options")
)

// FetchError reports that the candidates of a document could not be
// retrieved. It always matches crawler.ErrFetch.
type FetchError struct {
	// ID is the document being expanded.
	ID model.DocumentID

	// Step is the 1-based expansion number that failed.
	Step int

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("expansion %d of %s: %v", e.Step, e.ID, e.Err)
}

// Unwrap exposes crawler.ErrFetch and the underlying failure.
func (e *FetchError) Unwrap() []error {
	return []error{crawler.ErrFetch, e.Err}
}

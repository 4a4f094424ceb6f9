package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Outcome is the terminal state of a search.
//
// Design decision: We use iota-based constants with String/JSON methods,
// the same way severity levels used to be modelled, so outcomes compare
// cheaply and still serialize readably into reports and the history database.
type Outcome int

const (
	// OutcomeUnknown is the zero value; a search that has not terminated.
	OutcomeUnknown Outcome = iota

	// OutcomeSuccess means the destination appeared among the candidates
	// of an expansion step.
	OutcomeSuccess

	// OutcomeFrontierExhausted means no unvisited node was reachable
	// through a known edge. This is the expected result for an
	// unreachable destination.
	OutcomeFrontierExhausted

	// OutcomeBudgetExceeded means the step budget ran out before the
	// destination was found.
	OutcomeBudgetExceeded

	// OutcomeFetchFailed means a document could not be retrieved and the
	// search was aborted at that step.
	OutcomeFetchFailed

	// OutcomeCancelled means the context was cancelled or its deadline passed.
	OutcomeCancelled
)

// String returns the stable name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFrontierExhausted:
		return "frontier_exhausted"
	case OutcomeBudgetExceeded:
		return "budget_exceeded"
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for o := OutcomeSuccess; o <= OutcomeCancelled; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	if s == OutcomeUnknown.String() {
		return OutcomeUnknown, nil
	}
	return OutcomeUnknown, fmt.Errorf("unknown outcome %q", s)
}

// MarshalJSON encodes the outcome as its string name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes an outcome from its string name.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Failure errors reported through SearchResult.Err.
var (
	// ErrFrontierExhausted is reported when the search ran out of unvisited nodes.
	ErrFrontierExhausted = errors.New("frontier exhausted: destination unreachable from start")

	// ErrBudgetExceeded is reported when the expansion budget was used up.
	ErrBudgetExceeded = errors.New("expansion budget exceeded")
)

// SearchResult is the outcome of one start-to-destination search.
// On success Path holds the extracted path from Start to Destination.
// On failure Path is empty and Error explains why; Edges still holds the
// partial graph so callers can inspect or render it.
type SearchResult struct {
	// ID identifies the search in the history database. Empty until saved.
	ID string `json:"id,omitempty"`

	// Start is the normalized start document.
	Start DocumentID `json:"start"`

	// Destination is the normalized destination document.
	Destination DocumentID `json:"destination"`

	// Aliases holds the user-supplied labels for start and destination.
	Aliases Aliases `json:"aliases,omitempty"`

	// Interests are the topical interests passed to the oracle.
	Interests []string `json:"interests,omitempty"`

	// Outcome is the terminal state of the search.
	Outcome Outcome `json:"outcome"`

	// Path is the extracted path, Start first and Destination last.
	Path []DocumentID `json:"path,omitempty"`

	// PathCost is the inverted-cost length of Path.
	PathCost float64 `json:"path_cost,omitempty"`

	// Expanded lists the documents in the order they were expanded.
	Expanded []DocumentID `json:"expanded"`

	// Edges is a snapshot of the graph at termination, in insertion order.
	Edges []Edge `json:"edges"`

	// Directed records whether edges were inserted one way only.
	Directed bool `json:"directed"`

	// StartedAt is when the search began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the search.
	Elapsed time.Duration `json:"elapsed"`

	// Error holds the failure message, empty on success.
	Error string `json:"error,omitempty"`
}

// NewSearchResult creates an empty result for the given endpoints.
func NewSearchResult(start, destination DocumentID) *SearchResult {
	return &SearchResult{
		Start:       start,
		Destination: destination,
		Aliases:     make(Aliases),
		Expanded:    make([]DocumentID, 0),
		Edges:       make([]Edge, 0),
		Directed:    true,
		StartedAt:   time.Now(),
	}
}

// Succeeded reports whether the destination was reached.
func (r *SearchResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Steps returns the number of expansions performed.
func (r *SearchResult) Steps() int {
	return len(r.Expanded)
}

// Err returns the typed failure of the search, or nil on success.
// Fetch failures and cancellations are returned by the engine directly;
// here they are reconstructed from the stored message.
func (r *SearchResult) Err() error {
	switch r.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeFrontierExhausted:
		return ErrFrontierExhausted
	case OutcomeBudgetExceeded:
		return ErrBudgetExceeded
	default:
		if r.Error != "" {
			return errors.New(r.Error)
		}
		return fmt.Errorf("search did not complete: %s", r.Outcome)
	}
}

// OnPath reports whether the edge from→to lies on the extracted path.
func (r *SearchResult) OnPath(from, to DocumentID) bool {
	for i := 0; i+1 < len(r.Path); i++ {
		if r.Path[i] == from && r.Path[i+1] == to {
			return true
		}
	}
	return false
}

// PathContains reports whether id is a node of the extracted path.
func (r *SearchResult) PathContains(id DocumentID) bool {
	for _, p := range r.Path {
		if p == id {
			return true
		}
	}
	return false
}

// Label returns the scoring label of id, honoring aliases.
func (r *SearchResult) Label(id DocumentID) string {
	return r.Aliases.LabelOf(id)
}

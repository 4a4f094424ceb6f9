package search

import (
	"fmt"

	"github.com/nao1215/wikid/internal/model"
)

// DefaultMaxCandidatesPerNode keeps the 25 best candidates of each
// expansion, the amount a typical article page needs to reach its
// strongest links.
const DefaultMaxCandidatesPerNode = 25

// Options configures one search.
type Options struct {
	// Start is the document the search expands first.
	Start model.DocumentID

	// Destination is the document being searched for.
	Destination model.DocumentID

	// StartAlias replaces the derived label of Start when set.
	StartAlias string

	// DestinationAlias replaces the derived label of Destination when set.
	// It is the label every candidate is scored against.
	DestinationAlias string

	// Interests are passed to the oracle with every score request.
	Interests []string

	// MaxCandidatesPerNode keeps only the K highest-scoring candidates of
	// each expansion. The destination is always kept. 0 keeps all.
	MaxCandidatesPerNode int

	// Directed inserts edges one way only. When false every edge is also
	// recorded in reverse with the same weight.
	Directed bool

	// MaxExpansions stops the search after this many expansions.
	// 0 means no limit.
	MaxExpansions int

	// ScoreConcurrency is the number of candidates scored in parallel
	// within one expansion. Values below 2 score sequentially.
	ScoreConcurrency int
}

// NewOptions returns Options for start and destination with the default
// settings: directed, 25 candidates per node, sequential scoring.
func NewOptions(start, destination model.DocumentID) Options {
	return Options{
		Start:                start,
		Destination:          destination,
		Directed:             true,
		MaxCandidatesPerNode: DefaultMaxCandidatesPerNode,
		ScoreConcurrency:     1,
	}
}

// Validate checks the options for errors.
func (o Options) Validate() error {
	if o.Start == "" {
		return ErrStartRequired
	}
	if o.Destination == "" {
		return ErrDestinationRequired
	}
	if o.MaxCandidatesPerNode < 0 {
		return fmt.Errorf("%w: max candidates per node must not be negative, got %d", ErrInvalidOptions, o.MaxCandidatesPerNode)
	}
	if o.MaxExpansions < 0 {
		return fmt.Errorf("%w: max expansions must not be negative, got %d", ErrInvalidOptions, o.MaxExpansions)
	}
	if o.ScoreConcurrency < 0 {
		return fmt.Errorf("%w: score concurrency must not be negative, got %d", ErrInvalidOptions, o.ScoreConcurrency)
	}
	return nil
}

// aliases returns the alias map for the search endpoints.
func (o Options) aliases() model.Aliases {
	a := make(model.Aliases)
	if o.StartAlias != "" {
		a[o.Start] = o.StartAlias
	}
	if o.DestinationAlias != "" {
		a[o.Destination] = o.DestinationAlias
	}
	return a
}

package search

import (
	"github.com/nao1215/wikid/internal/graph"
	"github.com/nao1215/wikid/internal/model"
)

// State is the mutable state of one search.
type State struct {
	// Graph holds every scored edge recorded so far.
	Graph *graph.Store

	// Visited holds the expanded documents in expansion order.
	Visited *graph.VisitedSet

	// Current is the document being expanded, or the last one expanded
	// once the search has terminated.
	Current model.DocumentID
}

// NewState creates an empty State. The start document is added to the
// graph as an isolated node so that path extraction can find it even
// when it yields no candidates.
func NewState(opts Options) *State {
	var storeOpts []graph.StoreOption
	if !opts.Directed {
		storeOpts = append(storeOpts, graph.WithUndirected())
	}
	st := &State{
		Graph:   graph.NewStore(storeOpts...),
		Visited: graph.NewVisitedSet(),
		Current: opts.Start,
	}
	st.Graph.AddNode(opts.Start)
	return st
}

// Steps returns the number of expansions performed.
func (s *State) Steps() int {
	return s.Visited.Len()
}

// Package search implements the relevance-guided best-first search that
// grows a link graph from a start document until it reaches a destination.
//
// One call to Engine.Run owns one State: a graph.Store and a visited set
// that live for exactly one start-to-destination query. Each step of the
// loop
//
//  1. marks the current document visited,
//  2. fetches its candidates from a CandidateSource,
//  3. scores each candidate label against the destination label,
//  4. records node→candidate edges in the graph,
//  5. stops if the destination was among the candidates, otherwise
//     picks the unvisited endpoint of the heaviest edge in the whole
//     graph and repeats.
//
// A document is marked visited before it is fetched. A failed fetch
// therefore leaves it in the visited set while the graph is unchanged
// for that step.
//
// The loop is iterative. It stops early when Options.MaxExpansions is
// used up or the context is done.
package search

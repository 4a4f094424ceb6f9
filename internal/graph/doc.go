// Package graph holds the weighted link graph grown during a search.
//
// # Components
//
//   - Store: the mutable edge set, insertion ordered, last write wins
//   - SelectNext: the global best-first frontier selector
//   - ShortestPath: Dijkstra over inverted relevance costs
//
// # Weight semantics
//
// Edge weights are relevance scores where higher means "closer to the
// destination". Dijkstra minimizes a sum, so ShortestPath converts each
// weight into a cost with
//
//	cost(w) = -ln(min(w, ScoreCeiling) / ScoreCeiling)
//
// Minimizing the summed cost maximizes the product of normalized scores.
// A weight at or above ScoreCeiling costs nothing, and weights at or below
// zero cost -ln(MinScore/ScoreCeiling) so they remain traversable but are
// strongly avoided.
//
// # Determinism
//
// Iteration order is insertion order everywhere. SelectNext keeps the first
// edge it meets among equal weights, so repeated calls on the same graph
// and visited set always return the same node.
package graph

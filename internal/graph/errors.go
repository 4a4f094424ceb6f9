package graph

import "errors"

// Path extraction errors.
var (
	// ErrNoPath is returned when the destination cannot be reached from the
	// start over the directed edges of the graph.
	ErrNoPath = errors.New("no path from start to destination")

	// ErrUnknownNode is returned when the start node is not part of the graph.
	ErrUnknownNode = errors.New("node not found in graph")
)

// Package model defines the core data structures shared across wikid.
//
// This package contains the following main types:
//   - DocumentID: a normalized document URL used as graph identity
//   - Edge: a scored, directed link between two documents
//   - SearchResult: the outcome of one start-to-destination search
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, graph, search and report packages all need these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model

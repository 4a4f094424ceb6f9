package report

import (
	"cmp"
	"io"
	"slices"

	"github.com/nao1215/wikid/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the search result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.SearchResult) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write search results, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *model.SearchResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// pathEdges returns the scored edges along the extracted path.
// For undirected searches the reverse edge is accepted as well.
func pathEdges(result *model.SearchResult) []model.Edge {
	if len(result.Path) < 2 {
		return nil
	}

	weights := make(map[[2]model.DocumentID]float64, len(result.Edges))
	for _, e := range result.Edges {
		weights[[2]model.DocumentID{e.From, e.To}] = e.Weight
	}

	edges := make([]model.Edge, 0, len(result.Path)-1)
	for i := 0; i+1 < len(result.Path); i++ {
		from, to := result.Path[i], result.Path[i+1]
		w, ok := weights[[2]model.DocumentID{from, to}]
		if !ok && !result.Directed {
			w = weights[[2]model.DocumentID{to, from}]
		}
		edges = append(edges, model.Edge{From: from, To: to, Weight: w})
	}
	return edges
}

// onPath reports whether e lies on the path, in either direction when the
// search was undirected.
func onPath(result *model.SearchResult, e model.Edge) bool {
	if result.OnPath(e.From, e.To) {
		return true
	}
	return !result.Directed && result.OnPath(e.To, e.From)
}

// renderEdges returns the edges worth drawing: every path edge plus the
// highest-weight remaining edges up to limit. Undirected mirror edges are
// collapsed. A limit of zero or less keeps every edge. The original
// insertion order is preserved.
func renderEdges(result *model.SearchResult, limit int) []model.Edge {
	type indexed struct {
		model.Edge
		idx int
	}

	seen := make(map[[2]model.DocumentID]bool, len(result.Edges))
	var path, rest []indexed
	for i, e := range result.Edges {
		key := [2]model.DocumentID{e.From, e.To}
		if !result.Directed {
			if e.To < e.From {
				key = [2]model.DocumentID{e.To, e.From}
			}
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		if onPath(result, e) {
			path = append(path, indexed{e, i})
		} else {
			rest = append(rest, indexed{e, i})
		}
	}

	if limit > 0 {
		room := max(limit-len(path), 0)
		if len(rest) > room {
			slices.SortStableFunc(rest, func(a, b indexed) int {
				return cmp.Compare(b.Weight, a.Weight)
			})
			rest = rest[:room]
		}
	}

	all := append(path, rest...)
	slices.SortFunc(all, func(a, b indexed) int {
		return cmp.Compare(a.idx, b.idx)
	})

	edges := make([]model.Edge, len(all))
	for i, e := range all {
		edges[i] = e.Edge
	}
	return edges
}

// statusText returns a short description of the outcome.
func statusText(result *model.SearchResult) string {
	switch result.Outcome {
	case model.OutcomeSuccess:
		return "Path found"
	case model.OutcomeFrontierExhausted:
		return "No path (frontier exhausted)"
	case model.OutcomeBudgetExceeded:
		return "No path (expansion budget exceeded)"
	case model.OutcomeFetchFailed:
		return "Aborted (fetch failed)"
	case model.OutcomeCancelled:
		return "Aborted (cancelled)"
	default:
		return "Unknown"
	}
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

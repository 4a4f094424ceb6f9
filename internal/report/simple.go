package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/wikid/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
type SimpleWriter struct {
	baseWriter

	// showEdges prints the scored edges of the explored graph.
	showEdges bool

	// verbose enables additional detail in the output.
	verbose bool

	// maxEdges caps the number of edges listed when showEdges is set.
	maxEdges int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEdges configures the writer to list the explored graph.
func WithShowEdges(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEdges = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithMaxEdges caps the number of listed edges. Path edges are always listed.
func WithMaxEdges(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maxEdges = n
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		maxEdges:   50,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the search result in human-readable format.
func (w *SimpleWriter) Write(result *model.SearchResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writePath(&sb, result)
	if w.verbose {
		w.writeExpanded(&sb, result)
	}
	if w.showEdges || w.verbose {
		w.writeEdges(&sb, result)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with search information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.SearchResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          WIKID SEARCH REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Start:          %s (%s)\n", result.Label(result.Start), result.Start)
	fmt.Fprintf(sb, "Destination:    %s (%s)\n", result.Label(result.Destination), result.Destination)
	if len(result.Interests) > 0 {
		fmt.Fprintf(sb, "Interests:      %s\n", strings.Join(result.Interests, ", "))
	}
	if result.ID != "" {
		fmt.Fprintf(sb, "Search ID:      %s\n", result.ID)
	}
	fmt.Fprintf(sb, "Started:        %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Elapsed:        %s\n", result.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(sb, "Expansions:     %d\n", result.Steps())
	fmt.Fprintf(sb, "Edges:          %d\n", len(result.Edges))

	if result.Error != "" && !result.Succeeded() {
		fmt.Fprintf(sb, "Status:         %s - %s\n", statusText(result), result.Error)
	} else {
		fmt.Fprintf(sb, "Status:         %s\n", statusText(result))
	}
	sb.WriteString("\n")
}

// writePath writes the extracted path with the weight of each hop.
func (w *SimpleWriter) writePath(sb *strings.Builder, result *model.SearchResult) {
	section(sb, "PATH")

	if len(result.Path) == 0 {
		sb.WriteString("  No path found\n\n")
		return
	}

	fmt.Fprintf(sb, "  [0] %s\n", result.Label(result.Path[0]))
	for i, e := range pathEdges(result) {
		fmt.Fprintf(sb, "   |  score %.3f\n", e.Weight)
		fmt.Fprintf(sb, "  [%d] %s\n", i+1, result.Label(e.To))
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  %d hop(s), cost %.3f\n\n", len(result.Path)-1, result.PathCost)
}

// writeExpanded writes the documents in expansion order.
func (w *SimpleWriter) writeExpanded(sb *strings.Builder, result *model.SearchResult) {
	section(sb, "EXPANSION ORDER")

	if len(result.Expanded) == 0 {
		sb.WriteString("  Nothing was expanded\n\n")
		return
	}
	for i, id := range result.Expanded {
		fmt.Fprintf(sb, "  %3d. %s\n", i+1, result.Label(id))
	}
	sb.WriteString("\n")
}

// writeEdges writes the scored edges. Path edges are marked with '*'.
func (w *SimpleWriter) writeEdges(sb *strings.Builder, result *model.SearchResult) {
	section(sb, "GRAPH")

	edges := renderEdges(result, w.maxEdges)
	if len(edges) == 0 {
		sb.WriteString("  No edges\n\n")
		return
	}

	arrow := "->"
	if !result.Directed {
		arrow = "--"
	}
	for _, e := range edges {
		mark := " "
		if onPath(result, e) {
			mark = "*"
		}
		fmt.Fprintf(sb, "  %s %.3f  %s %s %s\n", mark, e.Weight,
			truncateString(result.Label(e.From), 30), arrow, truncateString(result.Label(e.To), 30))
	}
	if hidden := len(result.Edges) - len(edges); hidden > 0 && result.Directed {
		fmt.Fprintf(sb, "  ... %d lower-scored edge(s) omitted\n", hidden)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by wikid\n")
	sb.WriteString("https://github.com/nao1215/wikid\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

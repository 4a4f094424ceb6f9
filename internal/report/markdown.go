package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/wikid/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing; GitHub renders
// the embedded Mermaid diagrams directly.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// maxGraphEdges caps the edges drawn in the flowchart.
	maxGraphEdges int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMaxGraphEdges caps the edges drawn in the flowchart. Path edges are
// always drawn; the remaining room goes to the highest-weight edges.
func WithMaxGraphEdges(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.maxGraphEdges = n
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter:    newBaseWriter(output),
		maxGraphEdges: 60,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the search result in Markdown format.
func (w *MarkdownWriter) Write(result *model.SearchResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writePath(md, result)
	w.writeGraph(md, result)
	w.writeScores(md, result)
	w.writeExpanded(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with search information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.SearchResult) {
	md.H1("wikid Search Report")
	md.PlainText("")

	rows := [][]string{
		{"Start", fmt.Sprintf("[%s](%s)", result.Label(result.Start), result.Start)},
		{"Destination", fmt.Sprintf("[%s](%s)", result.Label(result.Destination), result.Destination)},
	}
	if len(result.Interests) > 0 {
		rows = append(rows, []string{"Interests", strings.Join(result.Interests, ", ")})
	}
	if result.ID != "" {
		rows = append(rows, []string{"Search ID", "`" + result.ID + "`"})
	}
	rows = append(rows,
		[]string{"Date", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Expansions", strconv.Itoa(result.Steps())},
		[]string{"Edges", strconv.Itoa(len(result.Edges))},
		[]string{"Status", statusText(result)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	switch result.Outcome {
	case model.OutcomeSuccess:
		md.Tipf("Found a %d-hop path after %d expansion(s).", len(result.Path)-1, result.Steps())
	case model.OutcomeFetchFailed, model.OutcomeCancelled:
		md.Cautionf("Search aborted: %s", result.Error)
	default:
		md.Warningf("No path found: %s", result.Error)
	}
	md.PlainText("")
}

// writePath writes the path as an ordered list of linked articles.
func (w *MarkdownWriter) writePath(md *markdown.Markdown, result *model.SearchResult) {
	md.H2("Path")
	md.PlainText("")

	if len(result.Path) == 0 {
		md.PlainText("No path found.")
		md.PlainText("")
		return
	}

	items := make([]string, 0, len(result.Path))
	items = append(items, fmt.Sprintf("[%s](%s)", result.Label(result.Path[0]), result.Path[0]))
	for _, e := range pathEdges(result) {
		items = append(items, fmt.Sprintf("[%s](%s) (score %.3f)", result.Label(e.To), e.To, e.Weight))
	}
	md.OrderedList(items...)
	md.PlainText("")
	md.PlainTextf("Path cost: `%.3f`", result.PathCost)
	md.PlainText("")
}

// writeGraph writes a Mermaid flowchart of the explored graph with the
// path nodes and edges highlighted.
func (w *MarkdownWriter) writeGraph(md *markdown.Markdown, result *model.SearchResult) {
	md.H2("Explored Graph")
	md.PlainText("")

	edges := renderEdges(result, w.maxGraphEdges)
	if len(edges) == 0 {
		md.PlainText("No edges were recorded.")
		md.PlainText("")
		return
	}
	if omitted := countOmitted(result, edges); omitted > 0 {
		md.Notef("%d lower-scored edge(s) are omitted from the diagram.", omitted)
		md.PlainText("")
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, flowchart(result, edges))
	md.PlainText("")
}

// countOmitted returns how many distinct edges renderEdges dropped.
func countOmitted(result *model.SearchResult, drawn []model.Edge) int {
	all := renderEdges(result, 0)
	return len(all) - len(drawn)
}

// flowchart renders edges as a Mermaid flowchart.
//
// The markdown library's flowchart builder has no linkStyle or class
// directives, so the diagram text is written here and embedded as a
// mermaid code block.
func flowchart(result *model.SearchResult, edges []model.Edge) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	ids := make(map[model.DocumentID]string)
	nodeID := func(doc model.DocumentID) string {
		if id, ok := ids[doc]; ok {
			return id
		}
		id := "n" + strconv.Itoa(len(ids))
		ids[doc] = id
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, mermaidEscape(result.Label(doc)))
		return id
	}

	// Declare the endpoints first so they keep stable ids.
	nodeID(result.Start)
	nodeID(result.Destination)

	arrow := "-->"
	if !result.Directed {
		arrow = "---"
	}

	var highlighted []int
	var links strings.Builder
	for i, e := range edges {
		from, to := nodeID(e.From), nodeID(e.To)
		fmt.Fprintf(&links, "    %s %s|%.2f| %s\n", from, arrow, e.Weight, to)
		if onPath(result, e) {
			highlighted = append(highlighted, i)
		}
	}
	sb.WriteString(links.String())

	sb.WriteString("    classDef path fill:#ffe08a,stroke:#b8860b,stroke-width:2px\n")
	sb.WriteString("    classDef endpoint fill:#9fd3ff,stroke:#1f6feb,stroke-width:2px\n")
	for _, doc := range result.Path {
		if id, ok := ids[doc]; ok && doc != result.Start && doc != result.Destination {
			fmt.Fprintf(&sb, "    class %s path\n", id)
		}
	}
	fmt.Fprintf(&sb, "    class %s,%s endpoint\n", ids[result.Start], ids[result.Destination])

	if len(highlighted) > 0 {
		idx := make([]string, len(highlighted))
		for i, h := range highlighted {
			idx[i] = strconv.Itoa(h)
		}
		fmt.Fprintf(&sb, "    linkStyle %s stroke:#d73a49,stroke-width:3px\n", strings.Join(idx, ","))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// mermaidEscape makes a label safe inside a quoted Mermaid node.
func mermaidEscape(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "\n", " ").Replace(s)
}

// scoreBuckets are the pie chart slices of the score distribution.
var scoreBuckets = []struct {
	label string
	upper float64
}{
	{"0.0-0.2", 0.2},
	{"0.2-0.4", 0.4},
	{"0.4-0.6", 0.6},
	{"0.6-0.8", 0.8},
	{"0.8-1.0", 1.0},
	{"1.0-1.2", 1.2},
}

// bucketCounts counts edge weights per score bucket.
func bucketCounts(edges []model.Edge) []uint64 {
	counts := make([]uint64, len(scoreBuckets))
	for _, e := range edges {
		i := 0
		for i < len(scoreBuckets)-1 && e.Weight >= scoreBuckets[i].upper {
			i++
		}
		counts[i]++
	}
	return counts
}

// writeScores writes a Mermaid pie chart of the edge score distribution.
func (w *MarkdownWriter) writeScores(md *markdown.Markdown, result *model.SearchResult) {
	if len(result.Edges) == 0 {
		return
	}

	md.H2("Score Distribution")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Edge Scores"),
		piechart.WithShowData(true),
	)
	for i, n := range bucketCounts(result.Edges) {
		if n > 0 {
			chart.LabelAndIntValue(scoreBuckets[i].label, n)
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeExpanded writes the expansion order inside a collapsible block.
func (w *MarkdownWriter) writeExpanded(md *markdown.Markdown, result *model.SearchResult) {
	if len(result.Expanded) == 0 {
		return
	}

	lines := make([]string, len(result.Expanded))
	for i, id := range result.Expanded {
		lines[i] = fmt.Sprintf("%d. %s", i+1, truncateString(result.Label(id), 80))
	}

	md.H2("Expansion Order")
	md.PlainText("")
	md.Details(fmt.Sprintf("%d expanded document(s)", len(lines)), strings.Join(lines, "\n"))
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wikid](https://github.com/nao1215/wikid)*")
}

package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/wikid/internal/model"
)

// JSONWriter outputs search results in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's sufficient for our needs
// 2. model types already carry json tags and Outcome marshals itself
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the search result in JSON format.
func (w *JSONWriter) Write(result *model.SearchResult) (int, error) {
	return w.writeJSON(result)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// PathStep is one hop of the path in a JSONReport.
type PathStep struct {
	// ID is the document.
	ID model.DocumentID `json:"id"`

	// Label is the display label of the document.
	Label string `json:"label"`

	// Score is the weight of the edge leading to this document.
	// It is zero for the start document.
	Score float64 `json:"score"`
}

// JSONReport wraps a search result with a readable path summary.
//
// Design decision: We wrap the result rather than modifying SearchResult
// because this allows us to add output-specific fields without polluting
// the core data structure.
type JSONReport struct {
	// Version is the wikid version that generated this report.
	Version string `json:"version"`

	// Status is the human-readable outcome.
	Status string `json:"status"`

	// Path is the labelled path, empty on failure.
	Path []PathStep `json:"path"`

	// Result is the full search result.
	Result *model.SearchResult `json:"result"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(result *model.SearchResult, version string) *JSONReport {
	steps := make([]PathStep, 0, len(result.Path))
	if len(result.Path) > 0 {
		steps = append(steps, PathStep{ID: result.Path[0], Label: result.Label(result.Path[0])})
	}
	for _, e := range pathEdges(result) {
		steps = append(steps, PathStep{ID: e.To, Label: result.Label(e.To), Score: e.Weight})
	}

	return &JSONReport{
		Version: version,
		Status:  statusText(result),
		Path:    steps,
		Result:  result,
	}
}

// FullJSONWriter outputs complete reports with metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the wikid version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the search result wrapped with metadata.
func (w *FullJSONWriter) Write(result *model.SearchResult) (int, error) {
	return w.writeJSON(NewJSONReport(result, w.version))
}

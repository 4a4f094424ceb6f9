// Package report renders finished searches for human inspection.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown with Mermaid diagrams of the explored graph
//
// Design decision: We separate report writing from the search result
// (which is in the model package). Rendering is never part of the search
// itself; a writer only reads a finished model.SearchResult.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report

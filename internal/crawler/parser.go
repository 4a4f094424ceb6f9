package crawler

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/wikid/internal/model"
)

// LinkExtractor pulls raw outbound references from document content.
// Implementations never fail: unparsable content yields no references.
type LinkExtractor interface {
	Extract(base model.DocumentID, content []byte) []string
}

// linkAttributes lists which attribute carries a reference for each tag.
var linkAttributes = map[string]string{
	"a":   "href",
	"img": "src",
}

// HTMLExtractor extracts references from <a href> and <img src> elements.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Attribute quoting and entities are decoded for us
//  3. Wikipedia markup changes often enough to break pattern matching
type HTMLExtractor struct {
	// attrs maps a lowercase tag name to the attribute holding its reference.
	attrs map[string]string
}

// ExtractorOption configures an HTMLExtractor.
type ExtractorOption func(*HTMLExtractor)

// WithTagAttribute adds or replaces the reference attribute for a tag.
func WithTagAttribute(tag, attr string) ExtractorOption {
	return func(e *HTMLExtractor) {
		e.attrs[strings.ToLower(tag)] = strings.ToLower(attr)
	}
}

// WithAnchorsOnly restricts extraction to <a href>.
func WithAnchorsOnly() ExtractorOption {
	return func(e *HTMLExtractor) {
		e.attrs = map[string]string{"a": "href"}
	}
}

// NewHTMLExtractor creates an HTMLExtractor with the default tag set.
func NewHTMLExtractor(opts ...ExtractorOption) *HTMLExtractor {
	e := &HTMLExtractor{attrs: make(map[string]string, len(linkAttributes))}
	for tag, attr := range linkAttributes {
		e.attrs[tag] = attr
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the distinct, non-empty references in document order.
func (e *HTMLExtractor) Extract(_ model.DocumentID, content []byte) []string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return []string{}
	}

	refs := make([]string, 0)
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := e.attrs[n.Data]; ok {
				ref := strings.TrimSpace(getAttr(n, attr))
				if ref != "" && !seen[ref] {
					seen[ref] = true
					refs = append(refs, ref)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return refs
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

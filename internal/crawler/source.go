package crawler

import (
	"context"
	"sync"

	"github.com/nao1215/wikid/internal/model"
)

// Source produces the admitted candidates of a document by chaining a
// Fetcher, a LinkExtractor and a URLFilter.
type Source struct {
	fetcher   Fetcher
	extractor LinkExtractor
	filter    *URLFilter

	// redirects maps fetched identifiers to the identifier they were
	// redirected to. Only actual redirects are stored.
	redirects sync.Map
}

// NewSource creates a Source.
func NewSource(fetcher Fetcher, extractor LinkExtractor, filter *URLFilter) *Source {
	return &Source{
		fetcher:   fetcher,
		extractor: extractor,
		filter:    filter,
	}
}

// Filter returns the URL filter used by the source.
func (s *Source) Filter() *URLFilter {
	return s.filter
}

// Candidates fetches id and returns its distinct admitted candidates in
// document order. References back to id itself, or to the URL it was
// redirected to, are dropped. Non-HTML documents have no candidates.
func (s *Source) Candidates(ctx context.Context, id model.DocumentID) ([]model.DocumentID, error) {
	doc, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.DocumentID, 0)
	if !doc.IsHTML() {
		return candidates, nil
	}

	base := doc.FinalID
	if base == "" {
		base = id
	}
	if base != id {
		s.redirects.Store(id, base)
	}

	seen := map[model.DocumentID]bool{id: true, base: true}
	for _, ref := range s.extractor.Extract(base, doc.Content) {
		c, ok := s.filter.Filter(string(base), ref)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// Redirect reports the identifier that id was redirected to when it was
// fetched, or false if it was not fetched or not redirected.
func (s *Source) Redirect(id model.DocumentID) (model.DocumentID, bool) {
	v, ok := s.redirects.Load(id)
	if !ok {
		return "", false
	}
	return v.(model.DocumentID), true
}

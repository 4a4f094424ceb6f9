package model

import (
	"net/url"
	"path"
	"strings"
)

// DocumentID is the normalized identifier of a crawlable document.
// Two documents are the same if and only if their DocumentIDs are equal
// as strings, so every DocumentID must be produced by NormalizeID or
// by a URL filter that applies the same normalization.
type DocumentID string

// String returns the identifier as a plain string.
func (id DocumentID) String() string {
	return string(id)
}

// NormalizeID resolves ref against base and strips the fragment.
// An empty base is allowed when ref is already absolute.
func NormalizeID(base, ref string) (DocumentID, error) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	if base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		r = b.ResolveReference(r)
	}
	r.Fragment = ""
	r.RawFragment = ""
	r.Scheme = strings.ToLower(r.Scheme)
	r.Host = strings.ToLower(r.Host)
	return DocumentID(r.String()), nil
}

// Label derives the display label used for similarity scoring.
// It is the last path segment, percent-decoded, with underscores turned
// into spaces. "https://en.wikipedia.org/wiki/Depression_(mood)" yields
// "Depression (mood)".
func (id DocumentID) Label() string {
	u, err := url.Parse(string(id))
	if err != nil {
		return lastSegment(string(id))
	}
	seg := path.Base(u.Path)
	if seg == "/" || seg == "." {
		seg = u.Host
	}
	return strings.ReplaceAll(seg, "_", " ")
}

func lastSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return strings.ReplaceAll(s, "_", " ")
}

// Aliases maps specific documents to user-supplied labels.
// The start and destination of a search are the usual entries.
type Aliases map[DocumentID]string

// LabelOf returns the alias for id if one is set, otherwise id.Label().
func (a Aliases) LabelOf(id DocumentID) string {
	if alias, ok := a[id]; ok && alias != "" {
		return alias
	}
	return id.Label()
}

package crawler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/nao1215/wikid/internal/model"
)

// Document is the fetched content of one identifier.
type Document struct {
	// ID is the identifier that was requested.
	ID model.DocumentID

	// FinalID is the identifier after redirects. Relative references in
	// Content resolve against FinalID.
	FinalID model.DocumentID

	// StatusCode is the HTTP response status code.
	StatusCode int

	// ContentType is the Content-Type response header.
	ContentType string

	// Content is the response body, truncated to the fetcher's limit.
	Content []byte
}

// IsHTML reports whether the document declares an HTML content type.
// An empty content type is treated as HTML.
func (d *Document) IsHTML() bool {
	return d.ContentType == "" || strings.Contains(d.ContentType, "html")
}

// Fetcher retrieves the content of a document.
// Failures are returned as *FetchError wrapping ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, id model.DocumentID) (*Document, error)
}

// Default fetcher settings.
const (
	// DefaultUserAgent identifies wikid in HTTP requests.
	DefaultUserAgent = "wikid/1.0 (+https://github.com/nao1215/wikid)"

	// DefaultMaxBodySize is large enough for long Wikipedia articles.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// HTTPFetcher fetches documents over HTTP(S).
type HTTPFetcher struct {
	// client performs the requests. Timeouts and proxies are configured on it.
	client *http.Client

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// headers are added to every request.
	headers map[string]string
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *HTTPFetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher using client.
// A nil client falls back to http.DefaultClient.
func NewHTTPFetcher(client *http.Client, opts ...FetcherOption) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &HTTPFetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		headers:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a GET request for id.
// Transport errors and non-2xx responses are both failures; the caller
// decides whether to retry.
func (f *HTTPFetcher) Fetch(ctx context.Context, id model.DocumentID) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(id), nil)
	if err != nil {
		return nil, &FetchError{ID: id, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{ID: id, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return nil, &FetchError{ID: id, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{ID: id, StatusCode: resp.StatusCode, Err: err}
	}

	finalID := id
	if resp.Request != nil && resp.Request.URL != nil {
		if normalized, err := model.NormalizeID("", resp.Request.URL.String()); err == nil {
			finalID = normalized
		}
	}

	return &Document{
		ID:          id,
		FinalID:     finalID,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Content:     body,
	}, nil
}

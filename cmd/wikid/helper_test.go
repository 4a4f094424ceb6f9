package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestWiki serves an article per key of pages under /wiki/.
// Each article links to the titles listed for it.
func newTestWiki(t *testing.T, pages map[string][]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title, ok := strings.CutPrefix(r.URL.Path, "/wiki/")
		links, found := pages[title]
		if !ok || !found {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		var sb strings.Builder
		fmt.Fprintf(&sb, "<html><head><title>%s</title></head><body>", title)
		for _, l := range links {
			fmt.Fprintf(&sb, `<a href="/wiki/%s">%s</a> `, l, l)
		}
		// Links every filter must reject.
		sb.WriteString(`<a href="/wiki/File:Tent.jpg">file</a> `)
		sb.WriteString(`<a href="https://example.com/wiki/Elsewhere">external</a>`)
		sb.WriteString("</body></html>")
		_, _ = w.Write([]byte(sb.String()))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeTestConfig writes a configuration file that admits plain http
// links, which the test wiki serves.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".wikid")
	content := "defaults:\n  schemes:\n    - http\n" + extra
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// runRoot executes the root command with args and returns its stdout.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

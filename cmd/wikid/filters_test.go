package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFiltersCommand(t *testing.T) {
	t.Parallel()

	t.Run("default rules", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".wikid")
		if err := os.WriteFile(path, []byte("defaults:\n  maxCandidates: 10\n"), 0600); err != nil {
			t.Fatal(err)
		}
		out, err := runRoot(t, "filters", "--config", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Schemes:    https",
			"Domains:    en.wikipedia.org",
			"File types: (no extension)",
			"1. article under https://en.wikipedia.org/wiki/ without namespace",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("profile patterns and checks", func(t *testing.T) {
		t.Parallel()
		path := writeTestConfig(t, `profiles:
  lists:
    schemes: [https]
    ignorePatterns: ["/wiki/List_of_*"]
`)
		out, err := runRoot(t, "filters",
			"--config", path,
			"--profile", "lists",
			"--check", "https://en.wikipedia.org/wiki/Tent",
			"--check", "https://en.wikipedia.org/wiki/List_of_tents",
			"--check", "https://en.wikipedia.org/wiki/File:Tent.jpg",
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Profile:    lists",
			"2. path patterns: ignore /wiki/List_of_*",
			"allowed  https://en.wikipedia.org/wiki/Tent",
			"rejected https://en.wikipedia.org/wiki/List_of_tents",
			"rejected https://en.wikipedia.org/wiki/File:Tent.jpg",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("rejects arguments", func(t *testing.T) {
		t.Parallel()
		if _, err := runRoot(t, "filters", "extra"); err == nil {
			t.Error("expected error for positional argument")
		}
	})
}

func TestDescribeSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"nil", nil, "(any)"},
		{"empty", []string{}, "(none)"},
		{"values", []string{"http", "https"}, "http, https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := describeSet(tt.values); got != tt.want {
				t.Errorf("describeSet() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := describeFileTypes([]string{"", ".html"}); got != "(no extension), .html" {
		t.Errorf("describeFileTypes() = %q", got)
	}
}

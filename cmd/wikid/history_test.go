package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wikid/internal/database"
	"github.com/nao1215/wikid/internal/model"
)

// seedHistory stores two searches and returns the database directory and
// the ID of the successful one.
func seedHistory(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	const base = "https://en.wikipedia.org/wiki/"
	ok := model.NewSearchResult(base+"Tent", base+"Nature")
	ok.Outcome = model.OutcomeSuccess
	ok.Path = []model.DocumentID{base + "Tent", base + "Camping", base + "Nature"}
	ok.Expanded = []model.DocumentID{base + "Tent", base + "Camping"}
	ok.Edges = []model.Edge{
		{From: base + "Tent", To: base + "Camping", Weight: 0.6},
		{From: base + "Camping", To: base + "Nature", Weight: 1},
	}
	ok.StartedAt = time.Now().Add(-time.Hour)

	failed := model.NewSearchResult(base+"Coffee", base+"Sleep")
	failed.Outcome = model.OutcomeFrontierExhausted
	failed.Error = model.ErrFrontierExhausted.Error()
	failed.Expanded = []model.DocumentID{base + "Coffee"}

	id, err := db.SaveSearch(t.Context(), ok)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.SaveSearch(t.Context(), failed); err != nil {
		t.Fatal(err)
	}
	return dir, id
}

func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	for _, name := range []string{"list", "limit", "start", "destination", "show", "delete", "json", "markdown"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
		t.Error("expected error for two arguments")
	}
}

func TestHistoryCommand(t *testing.T) {
	t.Parallel()

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()
		out, err := runRoot(t, "history", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No searches stored yet") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("lists most recent first", func(t *testing.T) {
		t.Parallel()
		dir, _ := seedHistory(t)
		out, err := runRoot(t, "history", "--db-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		coffee := strings.Index(out, "Coffee -> ? -> Sleep")
		tent := strings.Index(out, "Tent -> Camping -> Nature")
		if coffee < 0 || tent < 0 || coffee > tent {
			t.Errorf("unexpected listing:\n%s", out)
		}
	})

	t.Run("filters by start", func(t *testing.T) {
		t.Parallel()
		dir, _ := seedHistory(t)
		out, err := runRoot(t, "history", "--db-dir", dir, "--start", "Tent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(out, "Coffee") || !strings.Contains(out, "Tent") {
			t.Errorf("unexpected listing:\n%s", out)
		}
	})

	t.Run("json listing", func(t *testing.T) {
		t.Parallel()
		dir, id := seedHistory(t)
		out, err := runRoot(t, "history", "--db-dir", dir, "--json", "--limit", "1", "--start", "Tent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var items []summaryJSON
		if err := json.Unmarshal([]byte(out), &items); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(items) != 1 || items[0].ID != id || len(items[0].Path) != 3 {
			t.Errorf("unexpected items %+v", items)
		}
	})

	t.Run("markdown listing", func(t *testing.T) {
		t.Parallel()
		dir, _ := seedHistory(t)
		out, err := runRoot(t, "history", "--db-dir", dir, "--markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "# wikid Search History") || !strings.Contains(out, "| ID") {
			t.Errorf("unexpected markdown:\n%s", out)
		}
	})

	t.Run("show by prefix", func(t *testing.T) {
		t.Parallel()
		dir, id := seedHistory(t)
		out, err := runRoot(t, "history", "--db-dir", dir, id[:8])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"WIKID SEARCH REPORT", "Search ID:      " + id, "[1] Camping"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("show with flag", func(t *testing.T) {
		t.Parallel()
		dir, id := seedHistory(t)
		out, err := runRoot(t, "history", "--db-dir", dir, "--show", id, "--markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "```mermaid") {
			t.Errorf("expected mermaid graph:\n%s", out)
		}
	})

	t.Run("show unknown", func(t *testing.T) {
		t.Parallel()
		dir, _ := seedHistory(t)
		_, err := runRoot(t, "history", "--db-dir", dir, "no-such-id")
		if err == nil || !strings.Contains(err.Error(), "no stored search") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		dir, id := seedHistory(t)
		if _, err := runRoot(t, "history", "--db-dir", dir, "--delete", id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := runRoot(t, "history", "--db-dir", dir, id)
		if err == nil {
			t.Error("expected deleted search to be gone")
		}
	})

	t.Run("invalid combinations", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cases := [][]string{
			{"history", "--db-dir", dir, "--delete"},
			{"history", "--db-dir", dir, "--list", "abc"},
			{"history", "--db-dir", dir, "--show", "abc", "def"},
			{"history", "--db-dir", dir, "--json", "--markdown"},
			{"history", "--db-dir", dir, "--limit", "-1"},
		}
		for _, args := range cases {
			if _, err := runRoot(t, args...); err == nil {
				t.Errorf("expected error for %v", args)
			}
		}
	})
}

func TestShortID(t *testing.T) {
	t.Parallel()

	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID() = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q", got)
	}
}

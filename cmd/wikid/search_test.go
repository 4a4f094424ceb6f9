package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/wikid/internal/config"
	"github.com/nao1215/wikid/internal/database"
	"github.com/nao1215/wikid/internal/model"
	"github.com/nao1215/wikid/internal/report"
)

// TestNewSearchCmd tests the search command creation.
func TestNewSearchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewSearchCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "search <start> <destination>" {
			t.Errorf("unexpected use %q", cmd.Use)
		}
	})

	t.Run("requires two arguments", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, []string{"Tent"}); err == nil {
			t.Error("expected error for one argument")
		}
		if err := cmd.Args(cmd, []string{"Tent", "Nature"}); err != nil {
			t.Errorf("unexpected error for two arguments: %v", err)
		}
	})

	flagTests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"start-alias", "", ""},
		{"dest-alias", "", ""},
		{"interest", "i", "[]"},
		{"oracle", "O", config.OracleLexical},
		{"max-candidates", "k", "25"},
		{"max-expansions", "n", "100"},
		{"undirected", "", "false"},
		{"concurrency", "", "1"},
		{"proxy", "x", ""},
		{"timeout", "t", config.DefaultTimeout.String()},
		{"request-timeout", "", config.DefaultRequestTimeout.String()},
		{"config", "c", ""},
		{"profile", "p", ""},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"output", "o", ""},
		{"no-save", "", "false"},
	}
	for _, tt := range flagTests {
		t.Run("has "+tt.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestBuildConfig tests building a Config from flags and config files.
func TestBuildConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd := NewSearchCmd()
		if err := cmd.ParseFlags([]string{"--config", writeTestConfig(t, "")}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, "Tent", "Nature")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Start != "Tent" || cfg.Destination != "Nature" {
			t.Errorf("unexpected endpoints %q, %q", cfg.Start, cfg.Destination)
		}
		if cfg.MaxCandidates != config.DefaultMaxCandidates {
			t.Errorf("expected max candidates %d, got %d", config.DefaultMaxCandidates, cfg.MaxCandidates)
		}
		if !cfg.SaveToDB {
			t.Error("expected saving to be enabled by default")
		}
		if len(cfg.Schemes) != 1 || cfg.Schemes[0] != "http" {
			t.Errorf("expected schemes from config file, got %v", cfg.Schemes)
		}
	})

	t.Run("flags", func(t *testing.T) {
		cmd := NewSearchCmd()
		err := cmd.ParseFlags([]string{
			"--config", writeTestConfig(t, ""),
			"--interest", "camping", "--interest", "hiking",
			"--max-candidates", "5",
			"--max-expansions", "7",
			"--undirected",
			"--start-alias", "Shelter",
			"--dest-alias", "Outdoors",
			"--no-save",
			"--markdown",
		})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, "Tent", "Nature")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Join(cfg.Interests, ",") != "camping,hiking" {
			t.Errorf("unexpected interests %v", cfg.Interests)
		}
		if cfg.MaxCandidates != 5 || cfg.MaxExpansions != 7 {
			t.Errorf("unexpected limits %d, %d", cfg.MaxCandidates, cfg.MaxExpansions)
		}
		if !cfg.Undirected {
			t.Error("expected undirected")
		}
		if cfg.StartAlias != "Shelter" || cfg.DestinationAlias != "Outdoors" {
			t.Errorf("unexpected aliases %q, %q", cfg.StartAlias, cfg.DestinationAlias)
		}
		if cfg.SaveToDB {
			t.Error("expected --no-save to disable saving")
		}
		if !cfg.MarkdownReport {
			t.Error("expected markdown report")
		}
	})

	t.Run("profile values apply unless flags are set", func(t *testing.T) {
		path := writeTestConfig(t, `profiles:
  outdoors:
    interests: [camping]
    maxCandidates: 40
    maxExpansions: 9
    aliases:
      Tent: Shelter
`)
		cmd := NewSearchCmd()
		if err := cmd.ParseFlags([]string{"--config", path, "--profile", "outdoors", "--max-expansions", "3"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, "Tent", "Nature")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxCandidates != 40 {
			t.Errorf("expected profile max candidates 40, got %d", cfg.MaxCandidates)
		}
		if cfg.MaxExpansions != 3 {
			t.Errorf("expected flag max expansions 3, got %d", cfg.MaxExpansions)
		}
		if len(cfg.Interests) != 1 || cfg.Interests[0] != "camping" {
			t.Errorf("unexpected interests %v", cfg.Interests)
		}
		if cfg.StartAlias != "Shelter" {
			t.Errorf("expected alias from profile, got %q", cfg.StartAlias)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		cmd := NewSearchCmd()
		if err := cmd.ParseFlags([]string{"--config", writeTestConfig(t, ""), "--profile", "missing"}); err != nil {
			t.Fatal(err)
		}
		_, err := buildConfig(cmd, "Tent", "Nature")
		if !errors.Is(err, config.ErrUnknownProfile) {
			t.Errorf("expected ErrUnknownProfile, got %v", err)
		}
	})

	t.Run("explicit config file not found", func(t *testing.T) {
		cmd := NewSearchCmd()
		missing := filepath.Join(t.TempDir(), "missing.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatal(err)
		}
		_, err := buildConfig(cmd, "Tent", "Nature")
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("base-url flag beats profile", func(t *testing.T) {
		path := writeTestConfig(t, "  baseURL: https://de.wikipedia.org/wiki/\n")
		cmd := NewSearchCmd()
		if err := cmd.ParseFlags([]string{"--config", path, "--base-url", "https://fr.wikipedia.org/wiki/"}); err != nil {
			t.Fatal(err)
		}
		cfg, err := buildConfig(cmd, "Tent", "Nature")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BaseURL != "https://fr.wikipedia.org/wiki/" {
			t.Errorf("unexpected base URL %q", cfg.BaseURL)
		}
	})
}

func TestBaseDomains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		domains []string
		baseURL string
		want    []string
	}{
		{
			name:    "listed host",
			domains: []string{"en.wikipedia.org"},
			baseURL: "https://en.wikipedia.org/wiki/",
			want:    []string{"en.wikipedia.org"},
		},
		{
			name:    "host added",
			domains: []string{"en.wikipedia.org"},
			baseURL: "http://127.0.0.1:8080/wiki/",
			want:    []string{"en.wikipedia.org", "127.0.0.1:8080"},
		},
		{
			name:    "nil allows any",
			domains: nil,
			baseURL: "https://de.wikipedia.org/wiki/",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.NewConfig()
			cfg.Domains = tt.domains
			cfg.BaseURL = tt.baseURL

			got := baseDomains(cfg)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") || (got == nil) != (tt.want == nil) {
				t.Errorf("baseDomains() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFilter(t *testing.T) {
	t.Parallel()

	t.Run("default rules", func(t *testing.T) {
		t.Parallel()
		filter := newFilter(config.NewConfig())

		if len(filter.Predicates()) != 1 {
			t.Fatalf("expected one predicate, got %d", len(filter.Predicates()))
		}

		base := config.DefaultBaseURL + "Tent"
		if _, ok := filter.Filter(base, "/wiki/Camping"); !ok {
			t.Error("expected article link to be allowed")
		}
		for _, ref := range []string{"/wiki/File:Tent.jpg", "/wiki/Special:Random", "https://example.com/wiki/Tent", "http://en.wikipedia.org/wiki/Tent_(disambiguation)"} {
			if _, ok := filter.Filter(base, ref); ok {
				t.Errorf("expected %q to be rejected", ref)
			}
		}
	})

	t.Run("pattern predicate", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.IgnorePatterns = []string{"/wiki/List_of_*"}
		filter := newFilter(cfg)

		if len(filter.Predicates()) != 2 {
			t.Fatalf("expected two predicates, got %d", len(filter.Predicates()))
		}
		if _, ok := filter.Filter(config.DefaultBaseURL+"Tent", "/wiki/List_of_tents"); ok {
			t.Error("expected ignored pattern to be rejected")
		}
	})
}

func TestSearchOptions(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Start = "Mental health"
	cfg.Destination = "https://en.wikipedia.org/wiki/Nature#History"
	cfg.StartAlias = "Wellbeing"
	cfg.Interests = []string{"camping"}
	cfg.MaxCandidates = 10
	cfg.MaxExpansions = 20
	cfg.Undirected = true
	cfg.Concurrency = 4

	opts, err := searchOptions(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Start != "https://en.wikipedia.org/wiki/Mental_health" {
		t.Errorf("unexpected start %q", opts.Start)
	}
	if opts.Destination != "https://en.wikipedia.org/wiki/Nature" {
		t.Errorf("unexpected destination %q", opts.Destination)
	}
	if opts.StartAlias != "Wellbeing" {
		t.Errorf("unexpected start alias %q", opts.StartAlias)
	}
	if opts.MaxCandidatesPerNode != 10 || opts.MaxExpansions != 20 || opts.ScoreConcurrency != 4 {
		t.Errorf("unexpected limits %+v", opts)
	}
	if opts.Directed {
		t.Error("expected undirected options")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("options should validate: %v", err)
	}
}

func TestNewOracle(t *testing.T) {
	t.Parallel()

	t.Run("lexical", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		oracle, err := newOracle(cfg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := oracle.Score(t.Context(), "Tent", "Tent", nil); got != 1 {
			t.Errorf("expected identical labels to score 1, got %v", got)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.Oracle = "psychic"
		if _, err := newOracle(cfg, nil); !errors.Is(err, config.ErrUnknownOracle) {
			t.Errorf("expected ErrUnknownOracle, got %v", err)
		}
	})
}

func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		json     bool
		markdown bool
		check    func(report.Writer) bool
	}{
		{"simple", false, false, func(w report.Writer) bool { _, ok := w.(*report.SimpleWriter); return ok }},
		{"json", true, false, func(w report.Writer) bool { _, ok := w.(*report.FullJSONWriter); return ok }},
		{"markdown", false, true, func(w report.Writer) bool { _, ok := w.(*report.MarkdownWriter); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.NewConfig()
			cfg.JSONReport = tt.json
			cfg.MarkdownReport = tt.markdown
			if !tt.check(newReportWriter(cfg, os.Stdout)) {
				t.Error("unexpected writer type")
			}
		})
	}
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	t.Run("stdout when empty", func(t *testing.T) {
		t.Parallel()
		w, closeFn, err := openOutput("", os.Stdout)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w != os.Stdout {
			t.Error("expected stdout")
		}
		if err := closeFn(); err != nil {
			t.Errorf("unexpected close error: %v", err)
		}
	})

	t.Run("creates directories and file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "reports", "nested", "out.txt")
		w, closeFn, err := openOutput(path, os.Stdout)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := w.Write([]byte("hello")); err != nil {
			t.Fatal(err)
		}
		if err := closeFn(); err != nil {
			t.Fatal(err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected file: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected permissions 0600, got %o", info.Mode().Perm())
		}
	})
}

func TestResultError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		outcome    model.Outcome
		message    string
		wantNil    bool
		wantNoPath bool
		wantIs     error
	}{
		{name: "success", outcome: model.OutcomeSuccess, wantNil: true},
		{name: "frontier exhausted", outcome: model.OutcomeFrontierExhausted, wantNoPath: true, wantIs: model.ErrFrontierExhausted},
		{name: "budget exceeded", outcome: model.OutcomeBudgetExceeded, wantNoPath: true, wantIs: model.ErrBudgetExceeded},
		{name: "fetch failed", outcome: model.OutcomeFetchFailed, message: "fetch failed: 404"},
		{name: "cancelled", outcome: model.OutcomeCancelled, message: "context canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := model.NewSearchResult("a", "b")
			result.Outcome = tt.outcome
			result.Error = tt.message

			err := resultError(result, nil)
			if tt.wantNil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}

			var noPath *noPathError
			if errors.As(err, &noPath) != tt.wantNoPath {
				t.Errorf("noPathError match = %v, want %v", !tt.wantNoPath, tt.wantNoPath)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected %v in chain, got %v", tt.wantIs, err)
			}
			if tt.message != "" && !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected %q in %q", tt.message, err.Error())
			}
		})
	}

	t.Run("success keeps step error", func(t *testing.T) {
		t.Parallel()
		result := model.NewSearchResult("a", "b")
		result.Outcome = model.OutcomeSuccess
		stepErr := errors.New("disk full")
		if err := resultError(result, stepErr); !errors.Is(err, stepErr) {
			t.Errorf("expected step error, got %v", err)
		}
	})
}

// TestSearchCommand runs whole searches against a local test wiki.
// These tests are not parallel because the command sets the default logger.
func TestSearchCommand(t *testing.T) {
	pages := map[string][]string{
		"Start":       {"Beta", "Alpha"},
		"Alpha":       {"Destination"},
		"Beta":        {},
		"Destination": {},
		"Lonely":      {"Beta"},
	}
	srv := newTestWiki(t, pages)
	baseURL := srv.URL + "/wiki/"
	cfgPath := writeTestConfig(t, "")

	t.Run("finds a path and saves it", func(t *testing.T) {
		dbDir := t.TempDir()
		out, err := runRoot(t, "search",
			"--db-dir", dbDir,
			"--config", cfgPath,
			"--base-url", baseURL,
			"Start", "Destination",
		)
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, out)
		}

		for _, want := range []string{"WIKID SEARCH REPORT", "[0] Start", "[1] Alpha", "[2] Destination", "Search ID:"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}

		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		summaries, err := db.ListSearches(t.Context(), database.ListFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(summaries) != 1 {
			t.Fatalf("expected one stored search, got %d", len(summaries))
		}
		if summaries[0].Outcome != model.OutcomeSuccess || len(summaries[0].Path) != 3 {
			t.Errorf("unexpected stored search %+v", summaries[0])
		}
	})

	t.Run("unreachable destination", func(t *testing.T) {
		out, err := runRoot(t, "search",
			"--no-save",
			"--config", cfgPath,
			"--base-url", baseURL,
			"Lonely", "Destination",
		)
		var noPath *noPathError
		if !errors.As(err, &noPath) {
			t.Fatalf("expected noPathError, got %v", err)
		}
		if exitCode(err) != exitNoPath {
			t.Errorf("expected exit code %d, got %d", exitNoPath, exitCode(err))
		}
		if !strings.Contains(out, "No path found") {
			t.Errorf("expected report of failed search:\n%s", out)
		}
	})

	t.Run("missing start article", func(t *testing.T) {
		_, err := runRoot(t, "search",
			"--no-save",
			"--config", cfgPath,
			"--base-url", baseURL,
			"Missing", "Destination",
		)
		if err == nil {
			t.Fatal("expected error")
		}
		if exitCode(err) != exitError {
			t.Errorf("expected exit code %d, got %d", exitError, exitCode(err))
		}
		if !strings.Contains(err.Error(), "fetch_failed") {
			t.Errorf("expected fetch failure, got %v", err)
		}
	})

	t.Run("json report to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "report.json")
		if _, err := runRoot(t, "search",
			"--no-save",
			"--json",
			"--output", path,
			"--config", cfgPath,
			"--base-url", baseURL,
			"--start-alias", "Origin",
			"Start", "Destination",
		); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var rep report.JSONReport
		if err := json.Unmarshal(data, &rep); err != nil {
			t.Fatalf("invalid JSON report: %v", err)
		}
		if rep.Status != "Path found" {
			t.Errorf("unexpected status %q", rep.Status)
		}
		if len(rep.Path) != 3 || rep.Path[0].Label != "Origin" {
			t.Errorf("unexpected path %+v", rep.Path)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		_, err := runRoot(t, "search", "--no-save", "--config", cfgPath, "--json", "--markdown", "Start", "Destination")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("invalid proxy", func(t *testing.T) {
		_, err := runRoot(t, "search", "--no-save", "--config", cfgPath, "--base-url", baseURL, "--proxy", "not-a-proxy", "Start", "Destination")
		if err == nil || !strings.Contains(err.Error(), "failed to create client") {
			t.Errorf("expected client error, got %v", err)
		}
	})
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional; these tests fail if they change.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default BaseURL is English Wikipedia", func(t *testing.T) {
		t.Parallel()
		if cfg.BaseURL != "https://en.wikipedia.org/wiki/" {
			t.Errorf("unexpected BaseURL %q", cfg.BaseURL)
		}
	})

	t.Run("default MaxCandidates is 25", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxCandidates != 25 {
			t.Errorf("expected MaxCandidates to be 25, got %d", cfg.MaxCandidates)
		}
	})

	t.Run("default MaxExpansions is 100", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxExpansions != 100 {
			t.Errorf("expected MaxExpansions to be 100, got %d", cfg.MaxExpansions)
		}
	})

	t.Run("default search is directed and sequential", func(t *testing.T) {
		t.Parallel()
		if cfg.Undirected {
			t.Error("expected directed search by default")
		}
		if cfg.Concurrency != 1 {
			t.Errorf("expected Concurrency 1, got %d", cfg.Concurrency)
		}
	})

	t.Run("default oracle is lexical", func(t *testing.T) {
		t.Parallel()
		if cfg.Oracle != OracleLexical {
			t.Errorf("expected lexical oracle, got %q", cfg.Oracle)
		}
	})

	t.Run("default timeouts", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Minute {
			t.Errorf("expected Timeout 10m, got %v", cfg.Timeout)
		}
		if cfg.RequestTimeout != 30*time.Second {
			t.Errorf("expected RequestTimeout 30s, got %v", cfg.RequestTimeout)
		}
	})

	t.Run("default filter admits Wikipedia articles", func(t *testing.T) {
		t.Parallel()
		if !slices.Equal(cfg.Domains, []string{"en.wikipedia.org"}) {
			t.Errorf("unexpected Domains %v", cfg.Domains)
		}
		if !slices.Equal(cfg.Schemes, []string{"https"}) {
			t.Errorf("unexpected Schemes %v", cfg.Schemes)
		}
		if !slices.Equal(cfg.FileTypes, []string{""}) {
			t.Errorf("unexpected FileTypes %v", cfg.FileTypes)
		}
	})

	t.Run("history is saved by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB || cfg.DBDir == "" {
			t.Errorf("expected SaveToDB with a DBDir, got %v %q", cfg.SaveToDB, cfg.DBDir)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Start = "Tent"
		cfg.Destination = "Mental health"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid config returns nil", func(*Config) {}, nil},
		{"missing start", func(c *Config) { c.Start = "" }, ErrNoStart},
		{"missing destination", func(c *Config) { c.Destination = "" }, ErrNoDestination},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"zero timeout means no deadline", func(c *Config) { c.Timeout = 0 }, nil},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, ErrInvalidRequestTimeout},
		{"negative max candidates", func(c *Config) { c.MaxCandidates = -1 }, ErrInvalidMaxCandidates},
		{"zero max candidates keeps all", func(c *Config) { c.MaxCandidates = 0 }, nil},
		{"negative max expansions", func(c *Config) { c.MaxExpansions = -1 }, ErrInvalidMaxExpansions},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"unknown oracle", func(c *Config) { c.Oracle = "wordnet" }, ErrUnknownOracle},
		{"embedding without key", func(c *Config) { c.Oracle = OracleEmbedding }, ErrMissingAPIKey},
		{"embedding with key", func(c *Config) { c.Oracle = OracleEmbedding; c.APIKey = "sk-test" }, nil},
		{"embedding with local endpoint", func(c *Config) {
			c.Oracle = OracleEmbedding
			c.EmbeddingBaseURL = "http://localhost:8080/v1"
		}, nil},
		{"json and markdown", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"relative base URL", func(c *Config) { c.BaseURL = "wiki/" }, ErrInvalidBaseURL},
		{"empty base URL", func(c *Config) { c.BaseURL = "" }, ErrInvalidBaseURL},
		{"base URL without scheme", func(c *Config) { c.BaseURL = "de.wikipedia.org/wiki/" }, ErrInvalidBaseURL},
		{"ftp base URL", func(c *Config) { c.BaseURL = "ftp://example.org/wiki/" }, ErrInvalidBaseURL},
		{"base URL with query", func(c *Config) { c.BaseURL = "https://example.org/index.php?title=" }, ErrInvalidBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigValidateBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"default unchanged", DefaultBaseURL, DefaultBaseURL},
		{"trailing slash added", "https://de.wikipedia.org/wiki", "https://de.wikipedia.org/wiki/"},
		{"host only", "http://localhost:8080", "http://localhost:8080/"},
		{"surrounding space trimmed", " https://de.wikipedia.org/wiki/ ", "https://de.wikipedia.org/wiki/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.Start = "Zelt"
			cfg.Destination = "Natur"
			cfg.BaseURL = tt.baseURL
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			if cfg.BaseURL != tt.want {
				t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, tt.want)
			}
		})
	}
}

func intPtr(v int) *int {
	return &v
}

// TestFileGetProfile tests profile lookup and merging with defaults.
func TestFileGetProfile(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: Profile{
			Interests:     []string{"nature"},
			MaxCandidates: intPtr(10),
			Headers:       map[string]string{"X-A": "1"},
			Aliases:       map[string]string{"Tent": "Shelter"},
		},
		Profiles: map[string]Profile{
			"health": {
				Interests: []string{"medicine", "psychology"},
				Headers:   map[string]string{"X-B": "2"},
				Aliases:   map[string]string{"Mental health": "Wellbeing"},
			},
			"german": {
				BaseURL:       "https://de.wikipedia.org/wiki/",
				Domains:       []string{"de.wikipedia.org"},
				MaxCandidates: intPtr(0),
			},
		},
	}

	t.Run("empty name returns defaults", func(t *testing.T) {
		t.Parallel()

		p, err := cf.GetProfile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(p.Interests, []string{"nature"}) || *p.MaxCandidates != 10 {
			t.Errorf("unexpected defaults %+v", p)
		}
	})

	t.Run("profile overrides and merges", func(t *testing.T) {
		t.Parallel()

		p, err := cf.GetProfile("health")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(p.Interests, []string{"medicine", "psychology"}) {
			t.Errorf("expected profile interests, got %v", p.Interests)
		}
		if *p.MaxCandidates != 10 {
			t.Errorf("expected default max candidates to survive, got %d", *p.MaxCandidates)
		}
		if p.Headers["X-A"] != "1" || p.Headers["X-B"] != "2" {
			t.Errorf("expected merged headers, got %v", p.Headers)
		}
		if p.Aliases["Tent"] != "Shelter" || p.Aliases["Mental health"] != "Wellbeing" {
			t.Errorf("expected merged aliases, got %v", p.Aliases)
		}
	})

	t.Run("explicit zero overrides", func(t *testing.T) {
		t.Parallel()

		p, err := cf.GetProfile("german")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *p.MaxCandidates != 0 {
			t.Errorf("expected explicit 0, got %d", *p.MaxCandidates)
		}
		if p.BaseURL != "https://de.wikipedia.org/wiki/" {
			t.Errorf("unexpected BaseURL %q", p.BaseURL)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		t.Parallel()

		_, err := cf.GetProfile("missing")
		if !errors.Is(err, ErrUnknownProfile) {
			t.Errorf("expected ErrUnknownProfile, got %v", err)
		}
	})

	t.Run("profile names are sorted", func(t *testing.T) {
		t.Parallel()

		if got := cf.ProfileNames(); !slices.Equal(got, []string{"german", "health"}) {
			t.Errorf("ProfileNames() = %v", got)
		}
	})
}

// TestConfigApplyProfile tests that profiles fill in unset options only.
func TestConfigApplyProfile(t *testing.T) {
	t.Parallel()

	profile := Profile{
		Interests:      []string{"camping"},
		Aliases:        map[string]string{"Tent": "Shelter", "Nature": "Outdoors"},
		MaxCandidates:  intPtr(5),
		MaxExpansions:  intPtr(7),
		Domains:        []string{"de.wikipedia.org"},
		IgnorePatterns: []string{"/wiki/List_of_*"},
		Headers:        map[string]string{"Accept-Language": "de"},
	}

	t.Run("fills unset options", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Start, cfg.Destination = "Tent", "Nature"
		cfg.ApplyProfile(profile, nil)

		if !slices.Equal(cfg.Interests, []string{"camping"}) {
			t.Errorf("Interests = %v", cfg.Interests)
		}
		if cfg.MaxCandidates != 5 || cfg.MaxExpansions != 7 {
			t.Errorf("unexpected limits %d/%d", cfg.MaxCandidates, cfg.MaxExpansions)
		}
		if cfg.StartAlias != "Shelter" || cfg.DestinationAlias != "Outdoors" {
			t.Errorf("unexpected aliases %q/%q", cfg.StartAlias, cfg.DestinationAlias)
		}
		if !slices.Equal(cfg.Domains, []string{"de.wikipedia.org"}) {
			t.Errorf("Domains = %v", cfg.Domains)
		}
		if !slices.Equal(cfg.Schemes, []string{"https"}) {
			t.Errorf("Schemes should keep the default, got %v", cfg.Schemes)
		}
		if cfg.Headers["Accept-Language"] != "de" {
			t.Errorf("Headers = %v", cfg.Headers)
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Start, cfg.Destination = "Tent", "Nature"
		cfg.Interests = []string{"health"}
		cfg.MaxCandidates = 3
		cfg.DestinationAlias = "Wilderness"

		set := map[string]bool{"interest": true, "max-candidates": true, "dest-alias": true}
		cfg.ApplyProfile(profile, func(name string) bool { return set[name] })

		if !slices.Equal(cfg.Interests, []string{"health"}) {
			t.Errorf("Interests = %v", cfg.Interests)
		}
		if cfg.MaxCandidates != 3 {
			t.Errorf("MaxCandidates = %d", cfg.MaxCandidates)
		}
		if cfg.MaxExpansions != 7 {
			t.Errorf("MaxExpansions = %d", cfg.MaxExpansions)
		}
		if cfg.DestinationAlias != "Wilderness" {
			t.Errorf("DestinationAlias = %q", cfg.DestinationAlias)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.wikid")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wikid")
		content := `defaults:
  interests:
    - nature
  maxCandidates: 30
profiles:
  health:
    interests: [medicine]
    aliases:
      "Mental health": "Wellbeing"
    maxExpansions: 0
    fileTypes: [""]
    ignorePatterns:
      - "/wiki/List_of_*"
    headers:
      Accept-Language: en
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *cf.Defaults.MaxCandidates != 30 {
			t.Errorf("expected default max candidates 30, got %d", *cf.Defaults.MaxCandidates)
		}

		p, ok := cf.Profiles["health"]
		if !ok {
			t.Fatal("expected health profile")
		}
		if p.MaxExpansions == nil || *p.MaxExpansions != 0 {
			t.Errorf("expected explicit maxExpansions 0, got %v", p.MaxExpansions)
		}
		if p.Aliases["Mental health"] != "Wellbeing" {
			t.Errorf("unexpected aliases %v", p.Aliases)
		}
		if !slices.Equal(p.FileTypes, []string{""}) {
			t.Errorf("unexpected file types %q", p.FileTypes)
		}
		if p.Headers["Accept-Language"] != "en" {
			t.Errorf("unexpected headers %v", p.Headers)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wikid")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Profiles map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wikid")
		if err := os.WriteFile(configPath, []byte("defaults:\n  maxCandidates: 5\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Profiles == nil {
			t.Error("expected Profiles map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if dir == "" {
			t.Errorf("expected non-empty XDG %s dir", name)
		}
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("expected XDG %s dir to end with %q, got %q", name, AppName, dir)
		}
	}
}

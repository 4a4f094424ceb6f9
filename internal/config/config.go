package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBaseURL is the article prefix bare titles are resolved against.
	DefaultBaseURL = "https://en.wikipedia.org/wiki/"

	// DefaultMaxCandidates keeps the 25 most relevant links of every page.
	// Wikipedia articles routinely carry several hundred links; scoring and
	// keeping all of them makes the frontier grow much faster than it
	// needs to.
	DefaultMaxCandidates = 25

	// DefaultMaxExpansions bounds a search to 100 page fetches. The link
	// graph of Wikipedia is effectively infinite, so an unbounded search
	// may never exhaust its frontier.
	DefaultMaxExpansions = 100

	// DefaultConcurrency scores candidates one at a time.
	// The lexical oracle is fast enough that parallel scoring only pays
	// off for the embedding oracle.
	DefaultConcurrency = 1

	// DefaultTimeout bounds a whole search.
	DefaultTimeout = 10 * time.Minute

	// DefaultRequestTimeout bounds each HTTP request.
	DefaultRequestTimeout = 30 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "wikid"

	// DefaultUserAgent identifies wikid in HTTP requests.
	// Wikimedia asks clients to send a descriptive User-Agent with
	// contact information.
	DefaultUserAgent = "wikid/1.0 (+https://github.com/nao1215/wikid)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 10MB covers the longest Wikipedia articles.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// OracleLexical selects the string-based similarity oracle.
	OracleLexical = "lexical"

	// OracleEmbedding selects the embedding similarity oracle.
	OracleEmbedding = "embedding"

	// DefaultEmbeddingModel is the embedding model used by the embedding oracle.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// APIKeyEnv is the environment variable holding the embedding API key.
	APIKeyEnv = "OPENAI_API_KEY" //nolint:gosec // variable name, not a credential
)

// Config holds all configuration options for one wikid search.
// It is populated from CLI flags and the optional profile, then passed
// through the application rather than held in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FilterConfig, OracleConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Start is the start document as given by the user: a URL or a title.
	Start string

	// Destination is the destination document: a URL or a title.
	Destination string

	// StartAlias is the label used for the start document.
	StartAlias string

	// DestinationAlias is the label every candidate is scored against.
	DestinationAlias string

	// Interests boost candidates related to these topics.
	Interests []string

	// BaseURL is the article prefix bare titles are resolved against.
	// It also defines the article predicate of the link filter.
	BaseURL string

	// MaxCandidates keeps only the best candidates of every page.
	// 0 keeps all candidates.
	MaxCandidates int

	// MaxExpansions stops the search after this many page fetches.
	// 0 means no limit.
	MaxExpansions int

	// Undirected records every link in both directions.
	Undirected bool

	// Concurrency is the number of candidates scored in parallel.
	Concurrency int

	// Oracle selects the similarity oracle: "lexical" or "embedding".
	Oracle string

	// EmbeddingModel is the model used by the embedding oracle.
	EmbeddingModel string

	// EmbeddingBaseURL points the embedding oracle at an OpenAI-compatible
	// API other than api.openai.com.
	EmbeddingBaseURL string

	// APIKey authenticates the embedding oracle. It is read from the
	// OPENAI_API_KEY environment variable and never from flags.
	APIKey string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Timeout bounds the whole search. 0 means no deadline.
	Timeout time.Duration

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .wikid in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Profile is the name of the profile applied from the config file.
	// Empty means only the file's defaults apply.
	Profile string

	// Profiles holds the configuration file contents.
	Profiles *File

	// Domains restricts candidates to these hosts. nil allows any host.
	Domains []string

	// Schemes restricts candidates to these URL schemes. nil allows any.
	Schemes []string

	// FileTypes restricts candidates to these path extensions; "" stands
	// for paths without an extension. nil allows any.
	FileTypes []string

	// IgnorePatterns are URL path globs whose matches are never candidates.
	IgnorePatterns []string

	// FollowPatterns, when set, are the only URL path globs admitted.
	FollowPatterns []string

	// Headers are added to every HTTP request.
	Headers map[string]string

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output with Mermaid diagrams.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to XDG data directory (~/.local/share/wikid on Linux).
	DBDir string

	// SaveToDB indicates whether to save the search result to the database.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (10MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// The default link filter admits English Wikipedia articles over https.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, filter
// rules). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		MaxCandidates:  DefaultMaxCandidates,
		MaxExpansions:  DefaultMaxExpansions,
		Concurrency:    DefaultConcurrency,
		Oracle:         OracleLexical,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        DefaultTimeout,
		RequestTimeout: DefaultRequestTimeout,
		Domains:        []string{"en.wikipedia.org"},
		Schemes:        []string{"https"},
		FileTypes:      []string{""},
		Headers:        make(map[string]string),
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		SaveToDB:       true,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for wikid.
// On Linux: ~/.local/share/wikid
// On macOS: ~/Library/Application Support/wikid
// On Windows: %LOCALAPPDATA%\wikid
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikid.
// On Linux: ~/.config/wikid
// On macOS: ~/Library/Application Support/wikid
// On Windows: %APPDATA%\wikid
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for wikid.
// On Linux: ~/.cache/wikid
// On macOS: ~/Library/Caches/wikid
// On Windows: %LOCALAPPDATA%\wikid\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ApplyProfile copies the values set in p into c.
// Values already set explicitly by the caller win: set reports whether a
// named option was given on the command line. Known names are "interest",
// "max-candidates", "max-expansions", "start-alias" and "dest-alias".
func (c *Config) ApplyProfile(p Profile, set func(name string) bool) {
	if set == nil {
		set = func(string) bool { return false }
	}

	if len(p.Interests) > 0 && !set("interest") {
		c.Interests = append([]string(nil), p.Interests...)
	}
	if p.MaxCandidates != nil && !set("max-candidates") {
		c.MaxCandidates = *p.MaxCandidates
	}
	if p.MaxExpansions != nil && !set("max-expansions") {
		c.MaxExpansions = *p.MaxExpansions
	}
	if p.BaseURL != "" {
		c.BaseURL = p.BaseURL
	}
	if p.Domains != nil {
		c.Domains = p.Domains
	}
	if p.Schemes != nil {
		c.Schemes = p.Schemes
	}
	if p.FileTypes != nil {
		c.FileTypes = p.FileTypes
	}
	if len(p.IgnorePatterns) > 0 {
		c.IgnorePatterns = p.IgnorePatterns
	}
	if len(p.FollowPatterns) > 0 {
		c.FollowPatterns = p.FollowPatterns
	}
	if len(p.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range p.Headers {
			c.Headers[k] = v
		}
	}
	if alias, ok := p.Aliases[c.Start]; ok && !set("start-alias") {
		c.StartAlias = alias
	}
	if alias, ok := p.Aliases[c.Destination]; ok && !set("dest-alias") {
		c.DestinationAlias = alias
	}
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// We return the first error found because fixing one error often makes
// others irrelevant.
//
// Validate also normalizes BaseURL to end in "/", so that bare titles and
// crawled links resolve to the same identifiers.
func (c *Config) Validate() error {
	if c.Start == "" {
		return ErrNoStart
	}
	if c.Destination == "" {
		return ErrNoDestination
	}

	baseURL, err := normalizeBaseURL(c.BaseURL)
	if err != nil {
		return err
	}
	c.BaseURL = baseURL

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}

	if c.MaxCandidates < 0 {
		return ErrInvalidMaxCandidates
	}
	if c.MaxExpansions < 0 {
		return ErrInvalidMaxExpansions
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	switch c.Oracle {
	case OracleLexical:
	case OracleEmbedding:
		if c.APIKey == "" && c.EmbeddingBaseURL == "" {
			return ErrMissingAPIKey
		}
	default:
		return ErrUnknownOracle
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// normalizeBaseURL checks that raw is an absolute http(s) URL without query
// or fragment and appends a trailing slash when it is missing.
func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || u.RawQuery != "" || u.Fragment != "" {
		return "", ErrInvalidBaseURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", ErrInvalidBaseURL
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String(), nil
}

package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoStart is returned when no start document is specified.
	ErrNoStart = errors.New("no start document specified: provide an article title or URL")

	// ErrNoDestination is returned when no destination document is specified.
	ErrNoDestination = errors.New("no destination document specified: provide an article title or URL")

	// ErrInvalidTimeout is returned when the search timeout is negative.
	// Use 0 for no deadline.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidRequestTimeout is returned when the request timeout is not positive.
	ErrInvalidRequestTimeout = errors.New("invalid request timeout: must be positive")

	// ErrInvalidMaxCandidates is returned when max candidates is negative.
	// Use 0 to keep every candidate.
	ErrInvalidMaxCandidates = errors.New("invalid max candidates: must be non-negative")

	// ErrInvalidMaxExpansions is returned when max expansions is negative.
	// Use 0 for no limit.
	ErrInvalidMaxExpansions = errors.New("invalid max expansions: must be non-negative")

	// ErrInvalidConcurrency is returned when the scoring concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrUnknownOracle is returned when the oracle name is not recognized.
	ErrUnknownOracle = errors.New("unknown oracle: must be lexical or embedding")

	// ErrMissingAPIKey is returned when the embedding oracle is selected
	// without an API key or a custom endpoint.
	ErrMissingAPIKey = errors.New("embedding oracle requires OPENAI_API_KEY or --embedding-url")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http or https URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL such as https://en.wikipedia.org/wiki/")

	// ErrUnknownProfile is returned when the requested profile is not in
	// the configuration file.
	ErrUnknownProfile = errors.New("unknown profile")
)

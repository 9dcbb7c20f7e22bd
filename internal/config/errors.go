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
	// ErrInvalidSeed is returned when a seed is not an absolute gemini:// URL.
	ErrInvalidSeed = errors.New("invalid seed: must be an absolute gemini:// URL")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when a delay, jitter or host interval
	// is negative. Use 0 for no pause.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidWorkers is returned when the index worker count is negative.
	ErrInvalidWorkers = errors.New("invalid index workers: must be non-negative")

	// ErrInvalidMaxResults is returned when the result cap is not positive.
	ErrInvalidMaxResults = errors.New("invalid max results: must be positive")

	// ErrNoDataDir is returned when no data directory is configured.
	ErrNoDataDir = errors.New("no data directory configured")

	// ErrConflictingOutputFormats is returned when more than one of --json,
	// --markdown and --html is specified.
	ErrConflictingOutputFormats = errors.New("conflicting output formats: choose one of --json, --markdown or --html")
)

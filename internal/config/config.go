package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/gemsearch/internal/crawler"
	"github.com/nao1215/gemsearch/internal/gemini"
	"github.com/nao1215/gemsearch/internal/search"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "gemsearch"

	// DefaultMaxPages is the maximum number of URLs processed per crawl run.
	DefaultMaxPages = crawler.DefaultMaxPages

	// DefaultCrawlDelay is the fixed part of the pause between fetches.
	DefaultCrawlDelay = crawler.DefaultDelay

	// DefaultCrawlJitter is the upper bound of the random part of the pause.
	// With DefaultCrawlDelay this gives a pause of 1 to 3 seconds.
	DefaultCrawlJitter = crawler.DefaultJitter

	// DefaultTimeout bounds connecting to and reading from one capsule.
	DefaultTimeout = gemini.DefaultTimeout

	// DefaultMaxBodySize limits the size of one response.
	DefaultMaxBodySize = gemini.DefaultMaxBodySize

	// DefaultRobotsAgent is the robots.txt user agent the crawler obeys.
	DefaultRobotsAgent = crawler.DefaultRobotsAgent

	// DefaultMaxResults caps the results of one query.
	DefaultMaxResults = search.DefaultMaxResults

	// DefaultHistoryLimit is the number of crawl runs listed by default.
	DefaultHistoryLimit = 20
)

// Config holds all configuration options for gemsearch.
// This struct is populated from CLI flags and the optional config file and
// passed through the application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// Seeds are the URLs the crawl frontier starts from.
	// When empty, the seeds from the config file are used, and when that
	// has none, crawler.DefaultSeed.
	Seeds []string

	// MaxPages is the maximum number of URLs processed per crawl run.
	MaxPages int

	// CrawlDelay is the fixed pause after each fetch.
	CrawlDelay time.Duration

	// CrawlJitter is the upper bound of a random pause added to CrawlDelay.
	CrawlJitter time.Duration

	// HostInterval is the minimum interval between requests to one host.
	// Zero disables the per-host limiter.
	HostInterval time.Duration

	// Timeout bounds connecting to and reading from one capsule.
	Timeout time.Duration

	// MaxBodySize is the maximum response size in bytes.
	// Larger responses fail as transport errors.
	MaxBodySize int64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// When empty, capsules are dialed directly.
	ProxyAddress string

	// RespectRobots makes the crawler obey robots.txt.
	RespectRobots bool

	// RobotsAgent is the robots.txt user agent the crawler obeys.
	RobotsAgent string

	// IndexWorkers is the number of tokenization workers.
	// Zero means one per CPU.
	IndexWorkers int

	// MaxResults caps the results of one query.
	MaxResults int

	// DataDir is the directory holding the page store and the index.
	// Defaults to the XDG data directory (~/.local/share/gemsearch on Linux).
	DataDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONLogs switches log output to JSON.
	JSONLogs bool

	// Quiet hides progress bars.
	Quiet bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .gemsearch in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Hosts holds the configuration loaded from the config file.
	// Nil when no file was found.
	Hosts *File

	// JSONOutput selects JSON output. Mutually exclusive with the other
	// output formats.
	JSONOutput bool

	// MarkdownOutput selects Markdown output.
	MarkdownOutput bool

	// HTMLOutput selects HTML output.
	HTMLOutput bool

	// OutputFile is the file output is written to instead of stdout.
	// Directories are created automatically if they don't exist.
	OutputFile string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, delays).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxPages:      DefaultMaxPages,
		CrawlDelay:    DefaultCrawlDelay,
		CrawlJitter:   DefaultCrawlJitter,
		Timeout:       DefaultTimeout,
		MaxBodySize:   DefaultMaxBodySize,
		RespectRobots: true,
		RobotsAgent:   DefaultRobotsAgent,
		MaxResults:    DefaultMaxResults,
		DataDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for gemsearch.
// On Linux: ~/.local/share/gemsearch
// On macOS: ~/Library/Application Support/gemsearch
// On Windows: %LOCALAPPDATA%\gemsearch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for gemsearch.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// IndexDir returns the directory of the index store.
func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "index")
}

// CrawlSeeds returns the seeds to crawl from: the configured seeds, else
// the config file's, else the default seed.
func (c *Config) CrawlSeeds() []string {
	if len(c.Seeds) > 0 {
		return c.Seeds
	}
	if c.Hosts != nil && len(c.Hosts.Seeds) > 0 {
		return c.Hosts.Seeds
	}
	return []string{crawler.DefaultSeed}
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// We return the first error found because fixing one error often makes
// others irrelevant.
func (c *Config) Validate() error {
	for _, seed := range c.CrawlSeeds() {
		if !gemini.IsGeminiURL(seed) {
			return ErrInvalidSeed
		}
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlDelay < 0 || c.CrawlJitter < 0 || c.HostInterval < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.IndexWorkers < 0 {
		return ErrInvalidWorkers
	}

	if c.MaxResults <= 0 {
		return ErrInvalidMaxResults
	}

	if c.DataDir == "" {
		return ErrNoDataDir
	}

	formats := 0
	for _, set := range []bool{c.JSONOutput, c.MarkdownOutput, c.HTMLOutput} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingOutputFormats
	}

	return nil
}

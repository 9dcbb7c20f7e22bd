package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/gemsearch/internal/crawler"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults should be intentional, so each one is pinned here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxPages is 50", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 50 {
			t.Errorf("expected MaxPages to be 50, got %d", cfg.MaxPages)
		}
	})

	t.Run("default pause is 1s plus up to 2s jitter", func(t *testing.T) {
		t.Parallel()
		if cfg.CrawlDelay != time.Second || cfg.CrawlJitter != 2*time.Second {
			t.Errorf("expected 1s+2s, got %v+%v", cfg.CrawlDelay, cfg.CrawlJitter)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("robots.txt is respected as indexer", func(t *testing.T) {
		t.Parallel()
		if !cfg.RespectRobots || cfg.RobotsAgent != "indexer" {
			t.Errorf("got RespectRobots=%v RobotsAgent=%q", cfg.RespectRobots, cfg.RobotsAgent)
		}
	})

	t.Run("default MaxResults is 20", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxResults != 20 {
			t.Errorf("expected MaxResults to be 20, got %d", cfg.MaxResults)
		}
	})

	t.Run("no proxy by default", func(t *testing.T) {
		t.Parallel()
		if cfg.ProxyAddress != "" {
			t.Errorf("expected no proxy, got %q", cfg.ProxyAddress)
		}
	})

	t.Run("data dir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DataDir != XDGDataDir() {
			t.Errorf("DataDir = %q", cfg.DataDir)
		}
		if cfg.IndexDir() != filepath.Join(cfg.DataDir, "index") {
			t.Errorf("IndexDir = %q", cfg.IndexDir())
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "valid config returns nil", modify: func(*Config) {}, want: nil},
		{name: "multiple seeds is valid", modify: func(c *Config) { c.Seeds = []string{"gemini://a.example/", "gemini://b.example/"} }, want: nil},
		{name: "non-gemini seed", modify: func(c *Config) { c.Seeds = []string{"https://a.example/"} }, want: ErrInvalidSeed},
		{name: "relative seed", modify: func(c *Config) { c.Seeds = []string{"/docs"} }, want: ErrInvalidSeed},
		{name: "non-gemini seed from file", modify: func(c *Config) { c.Hosts = &File{Seeds: []string{"gopher://a.example/"}} }, want: ErrInvalidSeed},
		{name: "zero max pages", modify: func(c *Config) { c.MaxPages = 0 }, want: ErrInvalidMaxPages},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, want: ErrInvalidTimeout},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "zero delay is valid", modify: func(c *Config) { c.CrawlDelay, c.CrawlJitter = 0, 0 }, want: nil},
		{name: "negative delay", modify: func(c *Config) { c.CrawlDelay = -time.Second }, want: ErrInvalidCrawlDelay},
		{name: "negative jitter", modify: func(c *Config) { c.CrawlJitter = -time.Second }, want: ErrInvalidCrawlDelay},
		{name: "negative host interval", modify: func(c *Config) { c.HostInterval = -time.Second }, want: ErrInvalidCrawlDelay},
		{name: "zero body size", modify: func(c *Config) { c.MaxBodySize = 0 }, want: ErrInvalidMaxBodySize},
		{name: "negative workers", modify: func(c *Config) { c.IndexWorkers = -1 }, want: ErrInvalidWorkers},
		{name: "zero max results", modify: func(c *Config) { c.MaxResults = 0 }, want: ErrInvalidMaxResults},
		{name: "empty data dir", modify: func(c *Config) { c.DataDir = "" }, want: ErrNoDataDir},
		{name: "json only is valid", modify: func(c *Config) { c.JSONOutput = true }, want: nil},
		{name: "json and markdown", modify: func(c *Config) { c.JSONOutput, c.MarkdownOutput = true, true }, want: ErrConflictingOutputFormats},
		{name: "markdown and html", modify: func(c *Config) { c.MarkdownOutput, c.HTMLOutput = true, true }, want: ErrConflictingOutputFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.DataDir = t.TempDir()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCrawlSeeds(t *testing.T) {
	t.Parallel()

	t.Run("explicit seeds win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Seeds = []string{"gemini://cli.example/"}
		cfg.Hosts = &File{Seeds: []string{"gemini://file.example/"}}

		if got := cfg.CrawlSeeds(); len(got) != 1 || got[0] != "gemini://cli.example/" {
			t.Errorf("CrawlSeeds() = %v", got)
		}
	})

	t.Run("file seeds used when none given", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Hosts = &File{Seeds: []string{"gemini://file.example/"}}

		if got := cfg.CrawlSeeds(); len(got) != 1 || got[0] != "gemini://file.example/" {
			t.Errorf("CrawlSeeds() = %v", got)
		}
	})

	t.Run("default seed otherwise", func(t *testing.T) {
		t.Parallel()

		if got := NewConfig().CrawlSeeds(); len(got) != 1 || got[0] != crawler.DefaultSeed {
			t.Errorf("CrawlSeeds() = %v", got)
		}
	})
}

func TestFileGetHostConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when host not found", func(t *testing.T) {
		t.Parallel()

		cf := &File{Defaults: HostConfig{IgnorePatterns: []string{"*.png"}}}

		got := cf.GetHostConfig("unknown.example")
		if len(got.IgnorePatterns) != 1 || got.IgnorePatterns[0] != "*.png" {
			t.Errorf("IgnorePatterns = %v", got.IgnorePatterns)
		}
		if got.Skip {
			t.Error("unknown host should not be skipped")
		}
	})

	t.Run("host patterns override defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: HostConfig{IgnorePatterns: []string{"*.png"}, FollowPatterns: []string{"/docs/*"}},
			Hosts: map[string]HostConfig{
				"a.example": {IgnorePatterns: []string{"/cgi-bin/*"}},
			},
		}

		got := cf.GetHostConfig("a.example")
		if len(got.IgnorePatterns) != 1 || got.IgnorePatterns[0] != "/cgi-bin/*" {
			t.Errorf("IgnorePatterns = %v", got.IgnorePatterns)
		}
		if len(got.FollowPatterns) != 1 || got.FollowPatterns[0] != "/docs/*" {
			t.Errorf("FollowPatterns should fall back to defaults, got %v", got.FollowPatterns)
		}
	})

	t.Run("skip only from host entry", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: HostConfig{Skip: true},
			Hosts:    map[string]HostConfig{"b.example": {Skip: true}},
		}

		if cf.GetHostConfig("a.example").Skip {
			t.Error("defaults must not skip every host")
		}
		if !cf.GetHostConfig("b.example").Skip {
			t.Error("host entry skip should apply")
		}
	})

	t.Run("nil hosts map", func(t *testing.T) {
		t.Parallel()

		cf := &File{}
		if got := cf.GetHostConfig("a.example"); got.Skip || len(got.IgnorePatterns) != 0 {
			t.Errorf("unexpected config %+v", got)
		}
	})
}

func TestFileRules(t *testing.T) {
	t.Parallel()

	t.Run("converts host config", func(t *testing.T) {
		t.Parallel()

		cf := &File{Hosts: map[string]HostConfig{
			"a.example": {Skip: true, IgnorePatterns: []string{"/x/*"}},
		}}

		rules := cf.Rules()("a.example")
		if !rules.Skip || len(rules.IgnorePatterns) != 1 {
			t.Errorf("rules = %+v", rules)
		}
	})

	t.Run("nil file allows everything", func(t *testing.T) {
		t.Parallel()

		var cf *File
		if rules := cf.Rules()("a.example"); rules.Skip || rules.IgnorePatterns != nil || rules.FollowPatterns != nil {
			t.Errorf("rules = %+v", rules)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		content := `seeds:
  - gemini://a.example/
  - gemini://b.example/
defaults:
  ignorePatterns:
    - "*.png"
hosts:
  Slow.Example:
    skip: true
  docs.example:
    followPatterns:
      - /manual/*
`
		path := filepath.Join(t.TempDir(), ".gemsearch")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cf.Seeds) != 2 || cf.Seeds[1] != "gemini://b.example/" {
			t.Errorf("Seeds = %v", cf.Seeds)
		}
		if !cf.GetHostConfig("slow.example").Skip {
			t.Error("host keys should be lower-cased")
		}
		docs := cf.GetHostConfig("docs.example")
		if len(docs.FollowPatterns) != 1 || docs.FollowPatterns[0] != "/manual/*" {
			t.Errorf("FollowPatterns = %v", docs.FollowPatterns)
		}
		if len(docs.IgnorePatterns) != 1 || docs.IgnorePatterns[0] != "*.png" {
			t.Errorf("IgnorePatterns = %v", docs.IgnorePatterns)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".gemsearch")
		if err := os.WriteFile(path, []byte("seeds: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil || errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("initializes empty hosts map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".gemsearch")
		if err := os.WriteFile(path, []byte("seeds: []\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Hosts == nil {
			t.Error("expected non-nil Hosts map")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("seeds: []\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if !strings.HasSuffix(dir, AppName) {
				t.Errorf("%s dir %q should end with %q", name, dir, AppName)
			}
		})
	}
}

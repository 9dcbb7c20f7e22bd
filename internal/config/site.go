package config

import (
	"github.com/nao1215/gemsearch/internal/crawler"
)

// HostConfig holds crawl rules for one capsule host.
type HostConfig struct {
	// Skip excludes the host from crawling.
	// Only honored in a host entry, never in defaults.
	Skip bool `yaml:"skip,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .gemsearch configuration file.
type File struct {
	// Seeds replace the default crawl seeds when no seed is given on the
	// command line.
	Seeds []string `yaml:"seeds,omitempty"`

	// Hosts maps host names to their configurations.
	// Keys are bare host names without scheme or port (e.g., "example.org").
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults contains rules applied to every host unless overridden in
	// the host-specific configuration.
	Defaults HostConfig `yaml:"defaults,omitempty"`
}

// GetHostConfig returns the configuration for a specific host.
// It merges the host-specific configuration with defaults.
func (cf *File) GetHostConfig(host string) HostConfig {
	result := HostConfig{
		IgnorePatterns: cf.Defaults.IgnorePatterns,
		FollowPatterns: cf.Defaults.FollowPatterns,
	}

	if hostConfig, ok := cf.Hosts[host]; ok {
		result.Skip = hostConfig.Skip
		if len(hostConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = hostConfig.IgnorePatterns
		}
		if len(hostConfig.FollowPatterns) > 0 {
			result.FollowPatterns = hostConfig.FollowPatterns
		}
	}

	return result
}

// Rules adapts the file to the crawler's per-host rule lookup.
// A nil File yields no restrictions.
func (cf *File) Rules() crawler.RulesFunc {
	return func(host string) crawler.HostRules {
		if cf == nil {
			return crawler.HostRules{}
		}
		hc := cf.GetHostConfig(host)
		return crawler.HostRules{
			Skip:           hc.Skip,
			IgnorePatterns: hc.IgnorePatterns,
			FollowPatterns: hc.FollowPatterns,
		}
	}
}

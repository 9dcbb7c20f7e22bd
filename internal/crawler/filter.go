package crawler

import (
	"net/url"
	"path/filepath"
	"strings"
)

// HostRules are crawl restrictions for one host.
type HostRules struct {
	// Skip excludes the host from the crawl entirely.
	Skip bool

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/cgi-bin/*", "*.png").
	IgnorePatterns []string

	// FollowPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching at least one pattern are crawled.
	FollowPatterns []string
}

// RulesFunc returns the rules for a lower-case host name.
type RulesFunc func(host string) HostRules

// noRules allows everything.
func noRules(string) HostRules {
	return HostRules{}
}

// shouldCrawl checks if a URL should be crawled based on the rules for
// its host.
//
// Logic:
//  1. If the host is skipped, skip it (return false)
//  2. If URL matches any ignorePattern, skip it (return false)
//  3. If followPatterns is set and URL matches none, skip it (return false)
//  4. Otherwise, crawl it (return true)
func shouldCrawl(rulesFor RulesFunc, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	rules := rulesFor(strings.ToLower(u.Hostname()))
	if rules.Skip {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range rules.IgnorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(rules.FollowPatterns) > 0 {
		for _, pattern := range rules.FollowPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/cgi-bin/*" matches "/cgi-bin/search", "/cgi-bin/a/b"
//   - "*.png" matches "/images/logo.png"
//   - "/log/202?" matches "/log/2023", "/log/2024"
func matchPattern(pattern, path string) bool {
	// "/dir/*" covers the whole subtree, not only one segment.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Patterns without a slash also match the last path segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}

package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"

	"github.com/nao1215/gemsearch/internal/gemini"
)

// DefaultRobotsAgent is the virtual user agent search engine crawlers
// identify as in Gemini robots.txt files.
const DefaultRobotsAgent = "indexer"

// RobotsAgent evaluates robots.txt rules fetched over Gemini.
// Rules are fetched once per host and cached for the agent's lifetime.
// Any failure to obtain or parse robots.txt allows the URL.
type RobotsAgent struct {
	fetcher Fetcher
	agent   string
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsAgent creates a RobotsAgent that identifies as agent.
func NewRobotsAgent(fetcher Fetcher, agent string, logger *slog.Logger) *RobotsAgent {
	if agent == "" {
		agent = DefaultRobotsAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsAgent{
		fetcher: fetcher,
		agent:   agent,
		logger:  logger,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether target may be crawled and whether answering
// required a request for the host's robots.txt.
func (a *RobotsAgent) Allowed(ctx context.Context, target string) (allowed, fetched bool) {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return false, false
	}

	rules, fetched := a.rules(ctx, u)
	if rules == nil {
		return true, fetched
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return rules.TestAgent(path, a.agent), fetched
}

// rules returns the cached rules for the URL's host, fetching them on
// first use. A nil result means no rules apply.
func (a *RobotsAgent) rules(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, bool) {
	host := strings.ToLower(u.Host)

	a.mu.Lock()
	data, ok := a.cache[host]
	a.mu.Unlock()
	if ok {
		return data, false
	}

	robotsURL := gemini.Scheme + "://" + host + "/robots.txt"
	data = a.fetch(ctx, robotsURL)

	// A cancelled fetch says nothing about the host; try again next time.
	if ctx.Err() != nil {
		return data, true
	}

	a.mu.Lock()
	a.cache[host] = data
	a.mu.Unlock()
	return data, true
}

func (a *RobotsAgent) fetch(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	resp, err := a.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		a.logger.Debug("robots.txt unavailable", "url", robotsURL, "error", err)
		return nil
	}
	if resp.Status != gemini.StatusSuccess {
		a.logger.Debug("no robots.txt", "url", robotsURL, "status", resp.Status)
		return nil
	}

	data, err := robotstxt.FromString(resp.Body)
	if err != nil {
		a.logger.Debug("invalid robots.txt", "url", robotsURL, "error", err)
		return nil
	}
	return data
}

package crawler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/gemsearch/internal/gemini"
	"github.com/nao1215/gemsearch/internal/gemtext"
	"github.com/nao1215/gemsearch/internal/model"
)

// Crawl defaults.
const (
	// DefaultSeed is the seed used when none is configured.
	DefaultSeed = "gemini://gemini.circumlunar.space/"

	// DefaultMaxPages caps the number of URLs processed per run.
	DefaultMaxPages = 50

	// DefaultDelay is the fixed part of the pause between fetches.
	DefaultDelay = 1 * time.Second

	// DefaultJitter is the upper bound of the random part of the pause.
	DefaultJitter = 2 * time.Second
)

// Fetcher fetches a Gemini URL. *gemini.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*gemini.Response, error)
}

// PageStore persists fetched pages. *database.CrawlDB implements it.
type PageStore interface {
	UpsertPage(ctx context.Context, page *model.Page) (changed bool, err error)
}

// ProgressFunc receives the run's counters after every processed URL.
type ProgressFunc func(stats model.CrawlStats)

// Crawler crawls Gemini capsules breadth-first from a set of seeds and
// stores every successfully fetched document.
type Crawler struct {
	// fetcher performs Gemini requests.
	fetcher Fetcher

	// store receives fetched pages.
	store PageStore

	// seeds are the URLs the frontier starts from.
	seeds []string

	// maxPages limits the number of URLs processed.
	// Every visited URL counts, whatever its outcome.
	maxPages int

	// delay and jitter make up the pause between fetches:
	// delay plus a random duration in [0, jitter).
	delay  time.Duration
	jitter time.Duration

	// robotsAgent is the robots.txt user agent. Empty disables robots.txt.
	robotsAgent string

	// robots evaluates robots.txt. Nil when disabled.
	robots *RobotsAgent

	// limiter rate-limits requests per host. Nil when disabled.
	limiter *HostLimiter

	// rules returns per-host crawl restrictions.
	rules RulesFunc

	// progress is called after each processed URL. May be nil.
	progress ProgressFunc

	// now returns the fetch time stamped on pages.
	now func() time.Time

	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithSeeds sets the URLs the crawl starts from.
func WithSeeds(seeds ...string) Option {
	return func(c *Crawler) {
		if len(seeds) > 0 {
			c.seeds = seeds
		}
	}
}

// WithMaxPages sets the maximum number of URLs processed per run.
func WithMaxPages(maxPages int) Option {
	return func(c *Crawler) {
		if maxPages > 0 {
			c.maxPages = maxPages
		}
	}
}

// WithDelay sets the pause between fetches to delay plus a random
// duration below jitter.
func WithDelay(delay, jitter time.Duration) Option {
	return func(c *Crawler) {
		c.delay = max(delay, 0)
		c.jitter = max(jitter, 0)
	}
}

// WithRobots enables robots.txt checks for the given virtual agent.
func WithRobots(agent string) Option {
	return func(c *Crawler) {
		c.robotsAgent = agent
		if agent == "" {
			c.robotsAgent = DefaultRobotsAgent
		}
	}
}

// WithHostLimiter sets a per-host rate limiter.
func WithHostLimiter(l *HostLimiter) Option {
	return func(c *Crawler) {
		c.limiter = l
	}
}

// WithHostRules sets the function returning per-host restrictions.
func WithHostRules(rules RulesFunc) Option {
	return func(c *Crawler) {
		if rules != nil {
			c.rules = rules
		}
	}
}

// WithProgress sets a callback invoked after every processed URL.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Crawler) {
		c.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Crawler that fetches with fetcher and writes to store.
func New(fetcher Fetcher, store PageStore, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:  fetcher,
		store:    store,
		seeds:    []string{DefaultSeed},
		maxPages: DefaultMaxPages,
		delay:    DefaultDelay,
		jitter:   DefaultJitter,
		rules:    noRules,
		now:      time.Now,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.robotsAgent != "" {
		c.robots = NewRobotsAgent(fetcher, c.robotsAgent, c.logger)
	}

	return c
}

// Seeds returns the configured seed URLs.
func (c *Crawler) Seeds() []string {
	return c.seeds
}

// MaxPages returns the page cap.
func (c *Crawler) MaxPages() int {
	return c.maxPages
}

// Run crawls until the frontier is empty, the page cap is reached or ctx
// ends. The returned run summary is always non-nil. The error is non-nil
// only when ctx ended the run; the summary is then marked cancelled.
func (c *Crawler) Run(ctx context.Context) (*model.CrawlRun, error) {
	run := &model.CrawlRun{
		ID:        uuid.NewString(),
		Seeds:     c.seeds,
		StartedAt: c.now(),
	}
	logger := c.logger.With("run_id", run.ID)

	frontier := NewFrontier()
	visited := NewVisitedSet()

	for _, seed := range c.seeds {
		c.enqueue(frontier, logger, seed)
	}

	logger.Info("crawl started", "seeds", len(c.seeds), "max_pages", c.maxPages)

	var runErr error
	for frontier.Len() > 0 && visited.Len() < c.maxPages {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		target, _ := frontier.Pop()
		if !visited.MarkIfNotVisited(target) {
			continue
		}

		outcome, fetched := c.process(ctx, logger, frontier, target, &run.Stats)
		run.Stats.Record(outcome)
		run.Stats.Visited = visited.Len()

		if c.progress != nil {
			c.progress(run.Stats)
		}

		if !fetched || frontier.Len() == 0 || visited.Len() >= c.maxPages {
			continue
		}
		if err := c.pause(ctx); err != nil {
			runErr = err
			break
		}
	}

	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	run.Stats.Remaining = frontier.Len()
	run.FinishedAt = c.now()
	run.Cancelled = runErr != nil

	logger.Info("crawl finished",
		"visited", run.Stats.Visited,
		"stored", run.Stats.Stored,
		"failed", run.Stats.Failed,
		"remaining", run.Stats.Remaining,
		"cancelled", run.Cancelled,
		"duration", run.Duration())

	return run, runErr
}

// process handles one URL and returns its outcome and whether a request
// was sent. A robots.txt request counts; when one precedes the page fetch,
// the politeness delay separates the two.
func (c *Crawler) process(ctx context.Context, logger *slog.Logger, frontier *Frontier, target string, stats *model.CrawlStats) (model.Outcome, bool) {
	if c.robots != nil {
		allowed, robotsFetched := c.robots.Allowed(ctx, target)
		if !allowed {
			logger.Info("disallowed by robots.txt", "url", target)
			return model.OutcomeSkipped, robotsFetched
		}
		if robotsFetched {
			if err := c.pause(ctx); err != nil {
				return model.OutcomeSkipped, true
			}
		}
	}

	if err := c.limiter.Wait(ctx, hostOf(target)); err != nil {
		logger.Debug("rate limiter wait aborted", "url", target, "error", err)
		return model.OutcomeSkipped, false
	}

	resp, err := c.fetcher.Fetch(ctx, target)
	if err != nil {
		logger.Warn("fetch failed", "url", target, "error", err)
		return model.OutcomeFailed, true
	}

	switch {
	case gemini.IsRedirect(resp.Status):
		next, err := gemini.ResolveNormalized(target, resp.Meta)
		if err != nil || !gemini.IsGeminiURL(next) {
			logger.Info("ignoring redirect", "url", target, "target", resp.Meta)
			return model.OutcomeRedirected, true
		}
		queued := c.enqueue(frontier, logger, next)
		logger.Info("redirected", "url", target, "target", next, "queued", queued)
		return model.OutcomeRedirected, true

	case resp.Status == gemini.StatusSuccess:
		page := model.NewPage(target, gemtext.ExtractTitle(resp.Body), resp.Body, c.now())
		changed, err := c.store.UpsertPage(ctx, page)
		if err != nil {
			stats.StorageErrors++
			logger.Error("failed to store page", "url", target, "error", err)
			return model.OutcomeSkipped, true
		}
		if !changed {
			stats.Unchanged++
		}

		queued := 0
		for _, link := range gemtext.ExtractLinks(target, resp.Body) {
			if c.enqueue(frontier, logger, link) {
				queued++
			}
		}
		logger.Info("stored", "url", target, "title", page.Title, "changed", changed, "links_queued", queued)
		return model.OutcomeStored, true

	default:
		logger.Info("skipped", "url", target, "status", resp.Status, "class", resp.Class().String(), "meta", resp.Meta)
		return model.OutcomeSkipped, true
	}
}

// enqueue normalizes raw and pushes it unless it was seen before or the
// host rules exclude it.
func (c *Crawler) enqueue(frontier *Frontier, logger *slog.Logger, raw string) bool {
	normalized, err := gemini.Normalize(raw)
	if err != nil || !gemini.IsGeminiURL(normalized) {
		logger.Debug("ignoring invalid URL", "url", raw)
		return false
	}
	if frontier.Seen(normalized) {
		return false
	}
	if !shouldCrawl(c.rules, normalized) {
		logger.Debug("excluded by host rules", "url", normalized)
		return false
	}
	return frontier.Push(normalized)
}

// pause waits for the politeness delay or until ctx ends.
func (c *Crawler) pause(ctx context.Context) error {
	d := c.delay
	if c.jitter > 0 {
		d += rand.N(c.jitter) //nolint:gosec // timing jitter needs no crypto randomness
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// IsCancellation reports whether err only signals that the run was
// interrupted.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

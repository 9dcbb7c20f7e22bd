package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/gemsearch/internal/model"
)

// Crawler runs one crawl and returns its summary. A cancelled crawl returns
// both the partial run and the context error.
type Crawler interface {
	Run(ctx context.Context) (*model.CrawlRun, error)
}

// RunRecorder persists crawl run summaries.
type RunRecorder interface {
	SaveCrawlRun(ctx context.Context, run *model.CrawlRun) error
}

// IndexBuilder populates the inverted index from the page store.
type IndexBuilder interface {
	BuildIndex(ctx context.Context) (int, error)
	Rebuild(ctx context.Context) (int, error)
}

// CrawlStep crawls from the configured seeds and records the run.
//
// Design decision: The run summary is saved even when the crawl is
// cancelled, so history shows interrupted runs. Saving uses a context
// detached from cancellation for that reason.
type CrawlStep struct {
	crawler Crawler
	runs    RunRecorder
	logger  *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// WithRunRecorder saves each crawl run summary. Without it runs are not
// recorded.
func WithRunRecorder(runs RunRecorder) CrawlStepOption {
	return func(s *CrawlStep) {
		s.runs = runs
	}
}

// NewCrawlStep creates a new crawling step.
func NewCrawlStep(c Crawler, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		crawler: c,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, result *Result) error {
	run, err := s.crawler.Run(ctx)
	if run != nil {
		result.CrawlRun = run
		if s.runs != nil {
			if saveErr := s.runs.SaveCrawlRun(context.WithoutCancel(ctx), run); saveErr != nil {
				s.logger.Warn("failed to record crawl run", "run_id", run.ID, "error", saveErr)
			}
		}
		s.logger.Info("crawl completed",
			"run_id", run.ID,
			"visited", run.Stats.Visited,
			"stored", run.Stats.Stored,
			"failed", run.Stats.Failed,
		)
	}
	return err
}

// IndexStep builds the inverted index from the page store.
type IndexStep struct {
	builder IndexBuilder
	rebuild bool
	logger  *slog.Logger
}

// IndexStepOption configures an IndexStep.
type IndexStepOption func(*IndexStep)

// WithRebuild drops the existing index before building.
func WithRebuild(rebuild bool) IndexStepOption {
	return func(s *IndexStep) {
		s.rebuild = rebuild
	}
}

// WithIndexLogger sets a custom logger for the index step.
func WithIndexLogger(logger *slog.Logger) IndexStepOption {
	return func(s *IndexStep) {
		s.logger = logger
	}
}

// NewIndexStep creates a new indexing step.
func NewIndexStep(b IndexBuilder, opts ...IndexStepOption) *IndexStep {
	s := &IndexStep{
		builder: b,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *IndexStep) Name() string {
	return "index"
}

// Do executes the index step.
func (s *IndexStep) Do(ctx context.Context, result *Result) error {
	build := s.builder.BuildIndex
	if s.rebuild {
		build = s.builder.Rebuild
	}

	n, err := build(ctx)
	result.IndexEntries = n
	if err != nil {
		return err
	}

	s.logger.Info("index completed", "new_entries", n, "rebuild", s.rebuild)
	return nil
}

// DefaultPipeline creates the crawl-then-index pipeline.
//
// Design decision: The index is rebuilt rather than extended. A recrawl can
// change a page's content, and a plain build only adds postings, so stale
// terms would keep matching.
func DefaultPipeline(c Crawler, runs RunRecorder, b IndexBuilder, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewCrawlStep(c, WithRunRecorder(runs), WithCrawlLogger(p.logger)),
		NewIndexStep(b, WithRebuild(true), WithIndexLogger(p.logger)),
	)

	return p
}

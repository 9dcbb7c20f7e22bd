package indexer

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/gemsearch/internal/gemtext"
	"github.com/nao1215/gemsearch/internal/index"
	"github.com/nao1215/gemsearch/internal/model"
)

// PageSource yields every stored page. *database.CrawlDB implements it.
type PageSource interface {
	ScanPages(ctx context.Context) iter.Seq2[*model.Page, error]
}

// IndexWriter stores (term, url) entries. *index.Store implements it.
type IndexWriter interface {
	InsertTerms(ctx context.Context, url string, terms []string) (int, error)
	Drop() error
}

// ProgressFunc receives the number of pages indexed so far.
type ProgressFunc func(pages int)

// Indexer tokenizes stored pages into the index.
type Indexer struct {
	pages    PageSource
	index    IndexWriter
	workers  int
	progress ProgressFunc
	logger   *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithWorkers sets the number of tokenization workers.
func WithWorkers(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// WithProgress sets a callback invoked after every indexed page.
func WithProgress(fn ProgressFunc) Option {
	return func(ix *Indexer) {
		ix.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// New creates an Indexer reading from pages and writing to index.
func New(pages PageSource, index IndexWriter, opts ...Option) *Indexer {
	ix := &Indexer{
		pages:   pages,
		index:   index,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(ix)
	}

	return ix
}

// tokenized is one page's distinct terms.
type tokenized struct {
	url   string
	terms []string
}

// BuildIndex indexes every stored page and returns the number of (term,
// url) entries that were not present before. A page whose entries the index
// store fails to write is logged and left out; the pass goes on. Scan
// failures and cancellation stop it.
func (ix *Indexer) BuildIndex(ctx context.Context) (int, error) {
	start := time.Now()

	pool, err := ants.NewPool(ix.workers)
	if err != nil {
		return 0, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan tokenized, ix.workers)

	g.Go(func() error {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(results)
		}()

		for page, err := range ix.pages.ScanPages(gctx) {
			if err != nil {
				return err
			}

			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				r := tokenized{url: page.URL, terms: gemtext.UniqueTerms(page.Content)}
				select {
				case results <- r:
				case <-gctx.Done():
				}
			})
			if submitErr != nil {
				wg.Done()
				return fmt.Errorf("failed to submit page %s: %w", page.URL, submitErr)
			}
		}
		return nil
	})

	inserted, pages, failed := 0, 0, 0
	g.Go(func() error {
		for r := range results {
			n, err := ix.index.InsertTerms(gctx, r.url, r.terms)
			inserted += n
			if errors.Is(err, index.ErrStorage) {
				failed++
				ix.logger.Warn("failed to index page", "url", r.url, "error", err)
				continue
			}
			if err != nil {
				return err
			}

			pages++
			ix.logger.Debug("indexed page", "url", r.url, "terms", len(r.terms), "new_entries", n)
			if ix.progress != nil {
				ix.progress(pages)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return inserted, fmt.Errorf("indexing stopped after %d pages: %w", pages, err)
	}

	ix.logger.Info("index built",
		"pages", pages,
		"failed_pages", failed,
		"new_entries", inserted,
		"duration", time.Since(start),
	)
	return inserted, nil
}

// Rebuild drops the whole index and builds it again.
func (ix *Indexer) Rebuild(ctx context.Context) (int, error) {
	if err := ix.index.Drop(); err != nil {
		return 0, err
	}
	ix.logger.Info("index dropped for rebuild")
	return ix.BuildIndex(ctx)
}

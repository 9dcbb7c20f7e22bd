package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/gemsearch/internal/model"
)

// Result limits.
const (
	// DefaultMaxResults caps the number of urls enriched per query.
	DefaultMaxResults = 20

	// DefaultSnippetWords is the number of words in a result snippet.
	DefaultSnippetWords = 30

	// Ellipsis ends every snippet.
	Ellipsis = "..."
)

// ErrQueryRequired is returned for a query without any terms.
var ErrQueryRequired = errors.New("query required")

// IndexReader looks up the urls indexed under a term. *index.Store
// implements it.
type IndexReader interface {
	Lookup(ctx context.Context, term string) ([]string, error)
}

// PageReader loads a stored page, returning nil when it is missing.
// *database.CrawlDB implements it.
type PageReader interface {
	GetPage(ctx context.Context, url string) (*model.Page, error)
}

// Resolver answers search queries.
type Resolver struct {
	index        IndexReader
	pages        PageReader
	maxResults   int
	snippetWords int
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxResults sets the maximum number of results.
func WithMaxResults(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxResults = n
		}
	}
}

// WithSnippetWords sets the number of words in a snippet.
func WithSnippetWords(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.snippetWords = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver over the given stores.
func NewResolver(index IndexReader, pages PageReader, opts ...Option) *Resolver {
	r := &Resolver{
		index:        index,
		pages:        pages,
		maxResults:   DefaultMaxResults,
		snippetWords: DefaultSnippetWords,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ParseQuery splits raw on whitespace and lower-cases each term.
// Repeated terms are kept once.
func ParseQuery(raw string) []string {
	lower := cases.Lower(language.Und)

	var terms []string
	seen := make(map[string]struct{})
	for _, field := range strings.Fields(raw) {
		term := lower.String(field)
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

// Search returns the pages containing every term of rawQuery.
// A query without terms fails with ErrQueryRequired. A term missing from
// the index yields an empty result. Urls whose page row is gone are
// dropped.
func (r *Resolver) Search(ctx context.Context, rawQuery string) ([]model.SearchResult, error) {
	terms := ParseQuery(rawQuery)
	if len(terms) == 0 {
		return nil, ErrQueryRequired
	}

	urls, err := r.intersect(ctx, terms)
	if err != nil {
		return nil, err
	}

	if len(urls) > r.maxResults {
		urls = urls[:r.maxResults]
	}

	results := make([]model.SearchResult, 0, len(urls))
	for _, url := range urls {
		page, err := r.pages.GetPage(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", url, err)
		}
		if page == nil {
			r.logger.Debug("indexed page missing from store", "url", url)
			continue
		}

		results = append(results, model.SearchResult{
			URL:     page.URL,
			Title:   page.DisplayTitle(),
			Snippet: Snippet(page.Content, r.snippetWords),
		})
	}

	r.logger.Debug("search resolved", "terms", terms, "results", len(results))
	return results, nil
}

// intersect returns the urls indexed under every term, in the order the
// index returns them for the first term.
func (r *Resolver) intersect(ctx context.Context, terms []string) ([]string, error) {
	var result []string

	for i, term := range terms {
		urls, err := r.index.Lookup(ctx, term)
		if err != nil {
			return nil, err
		}
		if len(urls) == 0 {
			return []string{}, nil
		}

		if i == 0 {
			result = urls
			continue
		}

		present := make(map[string]struct{}, len(urls))
		for _, u := range urls {
			present[u] = struct{}{}
		}

		kept := result[:0:0]
		for _, u := range result {
			if _, ok := present[u]; ok {
				kept = append(kept, u)
			}
		}
		if len(kept) == 0 {
			return []string{}, nil
		}
		result = kept
	}

	return result, nil
}

// Snippet returns the first n whitespace-separated words of content
// joined by single spaces, followed by Ellipsis.
func Snippet(content string, n int) string {
	words := strings.Fields(content)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ") + Ellipsis
}

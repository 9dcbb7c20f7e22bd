package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/gemsearch/internal/gemini"
	"github.com/nao1215/gemsearch/internal/gemtext"
	"github.com/nao1215/gemsearch/internal/model"
)

// ErrInvalidTarget is returned when the target is not an absolute
// gemini:// URL.
var ErrInvalidTarget = errors.New("invalid URL: must be an absolute gemini:// URL")

// FetchFailedError reports a live fetch that did not return a document.
type FetchFailedError struct {
	// URL is the requested URL.
	URL string

	// Status is the response status, or 0 when no response was received.
	Status int

	// Meta is the response meta text, e.g. an error message or a redirect
	// target.
	Meta string

	// Err is the transport or protocol failure when Status is 0.
	Err error
}

// Error implements the error interface.
func (e *FetchFailedError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("error fetching content from %s: %v", e.URL, e.Err)
	}
	if e.Meta == "" {
		return fmt.Sprintf("error fetching content (status: %d)", e.Status)
	}
	return fmt.Sprintf("error fetching content (status: %d %s)", e.Status, e.Meta)
}

// Unwrap returns the underlying fetch failure, if any.
func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// Fetcher fetches a Gemini URL. *gemini.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*gemini.Response, error)
}

// PageReader loads a stored page, returning nil when it is missing.
// *database.CrawlDB implements it.
type PageReader interface {
	GetPage(ctx context.Context, url string) (*model.Page, error)
}

// Renderer turns a URL into a display document.
type Renderer struct {
	pages   PageReader
	fetcher Fetcher
	logger  *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a Renderer that reads pages and fetches the rest.
func NewRenderer(pages PageReader, fetcher Fetcher, opts ...Option) *Renderer {
	r := &Renderer{
		pages:   pages,
		fetcher: fetcher,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render returns the display form of the document at rawURL.
func (r *Renderer) Render(ctx context.Context, rawURL string) (*gemtext.Document, error) {
	if !gemini.IsGeminiURL(rawURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, rawURL)
	}

	page, err := r.cached(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if page != nil {
		r.logger.Debug("rendering stored copy", "url", page.URL, "fetched_at", page.FetchedAt)
		return gemtext.ToDisplay(page.Content, rawURL), nil
	}

	resp, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, &FetchFailedError{URL: rawURL, Err: err}
	}
	if resp.Status != gemini.StatusSuccess {
		return nil, &FetchFailedError{URL: rawURL, Status: resp.Status, Meta: resp.Meta}
	}

	r.logger.Debug("rendering live copy", "url", rawURL)
	return gemtext.ToDisplay(resp.Body, rawURL), nil
}

// cached looks the URL up as given and in normalized form, since the
// crawler stores pages under normalized URLs.
func (r *Renderer) cached(ctx context.Context, rawURL string) (*model.Page, error) {
	candidates := []string{rawURL}
	if normalized, err := gemini.Normalize(rawURL); err == nil && normalized != rawURL {
		candidates = append(candidates, normalized)
	}

	for _, u := range candidates {
		page, err := r.pages.GetPage(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("failed to read stored copy of %s: %w", u, err)
		}
		if page != nil {
			return page, nil
		}
	}
	return nil, nil
}

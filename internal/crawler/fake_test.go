package crawler

import (
	"context"
	"errors"
	"sync"

	"github.com/nao1215/gemsearch/internal/gemini"
	"github.com/nao1215/gemsearch/internal/model"
)

// fakeFetcher serves canned responses and counts requests per URL.
// URLs without a canned response fail with a transport error.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*gemini.Response
	calls     map[string]int
	order     []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string]*gemini.Response),
		calls:     make(map[string]int),
	}
}

func (f *fakeFetcher) page(url, body string) *fakeFetcher {
	f.responses[url] = &gemini.Response{Status: gemini.StatusSuccess, Meta: "text/gemini", Body: body}
	return f
}

func (f *fakeFetcher) status(url string, status int, meta string) *fakeFetcher {
	f.responses[url] = &gemini.Response{Status: status, Meta: meta}
	return f
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*gemini.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[rawURL]++
	f.order = append(f.order, rawURL)

	resp, ok := f.responses[rawURL]
	if !ok {
		return nil, &gemini.FetchError{URL: rawURL, Kind: gemini.ErrTransport, Err: errors.New("connection refused")}
	}
	copied := *resp
	return &copied, nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeFetcher) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// fakeStore keeps pages in memory and fails for URLs listed in failFor.
type fakeStore struct {
	mu      sync.Mutex
	pages   map[string]*model.Page
	failFor map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pages:   make(map[string]*model.Page),
		failFor: make(map[string]bool),
	}
}

func (s *fakeStore) UpsertPage(_ context.Context, page *model.Page) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failFor[page.URL] {
		return false, errors.New("disk full")
	}
	previous, ok := s.pages[page.URL]
	s.pages[page.URL] = page
	return !ok || previous.Hash != page.Hash, nil
}

func (s *fakeStore) get(url string) *model.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[url]
}

func (s *fakeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/gemsearch/internal/gemtext"
	"github.com/nao1215/gemsearch/internal/model"
)

// JSONWriter outputs records in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's sufficient for our needs
// 2. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// SearchResponse is the JSON shape of a search.
type SearchResponse struct {
	// Query is the raw query string.
	Query string `json:"query"`

	// Count is the number of results.
	Count int `json:"count"`

	// Results are the matching pages.
	Results []model.SearchResult `json:"results"`
}

// WriteResults outputs the query and its results.
func (w *JSONWriter) WriteResults(query string, results []model.SearchResult) (int, error) {
	if results == nil {
		results = []model.SearchResult{}
	}
	return w.writeJSON(SearchResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	})
}

// WriteDocument outputs the display document.
func (w *JSONWriter) WriteDocument(doc *gemtext.Document) (int, error) {
	return w.writeJSON(doc)
}

// WriteHistory outputs the crawl runs as an array.
func (w *JSONWriter) WriteHistory(runs []model.CrawlRun) (int, error) {
	if runs == nil {
		runs = []model.CrawlRun{}
	}
	return w.writeJSON(runs)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

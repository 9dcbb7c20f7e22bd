package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/gemsearch/internal/gemtext"
	"github.com/nao1215/gemsearch/internal/model"
)

// Writer defines the interface for command output.
// Implementations write the same data in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// WriteResults outputs the results of a search query.
	// Returns the number of bytes written and any error encountered.
	WriteResults(query string, results []model.SearchResult) (int, error)

	// WriteDocument outputs a display document.
	WriteDocument(doc *gemtext.Document) (int, error)

	// WriteHistory outputs crawl run summaries.
	WriteHistory(runs []model.CrawlRun) (int, error)
}

// Format names an output format.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown output format")

// NewWriter returns the writer for format.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatHTML:
		return NewHTMLWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write records, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteResults outputs search results to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteResults(query string, results []model.SearchResult) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteResults(query, results) })
}

// WriteDocument outputs the document to all configured Writers.
func (m *MultiWriter) WriteDocument(doc *gemtext.Document) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteDocument(doc) })
}

// WriteHistory outputs crawl history to all configured Writers.
func (m *MultiWriter) WriteHistory(runs []model.CrawlRun) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteHistory(runs) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is used for every timestamp in human-readable output.
const timeLayout = "2006-01-02 15:04:05 MST"

// shortID returns the first block of a run UUID.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// runStatus describes how a run ended.
func runStatus(run model.CrawlRun) string {
	if run.Cancelled {
		return "cancelled"
	}
	return "complete"
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/gemsearch/internal/gemtext"
	"github.com/nao1215/gemsearch/internal/model"
)

// SimpleWriter outputs human-readable text.
// Documents are written back as gemtext, which reads well in a terminal
// and keeps link targets visible.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
type SimpleWriter struct {
	baseWriter

	// verbose adds fetch and URL details to search results.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteResults outputs a numbered result list.
func (w *SimpleWriter) WriteResults(query string, results []model.SearchResult) (int, error) {
	var sb strings.Builder

	if len(results) == 0 {
		fmt.Fprintf(&sb, "No results for %q.\n", query)
		return io.WriteString(w.output, sb.String())
	}

	fmt.Fprintf(&sb, "Results for %q (%d)\n\n", query, len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "%2d. %s\n", i+1, r.Title)
		fmt.Fprintf(&sb, "    %s\n", r.URL)
		fmt.Fprintf(&sb, "    %s\n", r.Snippet)
		if w.verbose {
			fmt.Fprintf(&sb, "    proxy: %s\n", gemtext.ProxyHref(r.URL))
		}
		sb.WriteString("\n")
	}

	return io.WriteString(w.output, sb.String())
}

// WriteDocument outputs the document as gemtext.
func (w *SimpleWriter) WriteDocument(doc *gemtext.Document) (int, error) {
	var sb strings.Builder

	for _, line := range doc.Lines {
		switch line.Kind {
		case gemtext.LineHeading:
			sb.WriteString(strings.Repeat("#", line.Level))
			sb.WriteString(" ")
			sb.WriteString(line.Text)
		case gemtext.LineLink:
			sb.WriteString("=> ")
			sb.WriteString(line.Target)
			if line.Text != line.Target {
				sb.WriteString(" ")
				sb.WriteString(line.Text)
			}
		default:
			sb.WriteString(line.Text)
		}
		sb.WriteString("\n")
	}

	return io.WriteString(w.output, sb.String())
}

// WriteHistory outputs one line per crawl run, most recent first.
func (w *SimpleWriter) WriteHistory(runs []model.CrawlRun) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No crawl runs recorded.\n")
		return io.WriteString(w.output, sb.String())
	}

	fmt.Fprintf(&sb, "%-8s  %-23s  %10s  %7s  %6s  %6s  %s\n",
		"RUN", "STARTED", "DURATION", "VISITED", "STORED", "FAILED", "STATUS")
	sb.WriteString(strings.Repeat("-", 80))
	sb.WriteString("\n")

	for _, run := range runs {
		fmt.Fprintf(&sb, "%-8s  %-23s  %10s  %7d  %6d  %6d  %s\n",
			shortID(run.ID),
			run.StartedAt.Format(timeLayout),
			run.Duration().Round(1e9).String(),
			run.Stats.Visited,
			run.Stats.Stored,
			run.Stats.Failed,
			runStatus(run))
	}

	return io.WriteString(w.output, sb.String())
}

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/gemsearch/internal/gemtext"
	"github.com/nao1215/gemsearch/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// maxCellLength bounds seed lists in history tables.
const maxCellLength = 60

// MarkdownWriter outputs records in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteResults outputs search results as a list of links with snippets.
func (w *MarkdownWriter) WriteResults(query string, results []model.SearchResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Search: " + query)
	md.PlainText("")

	if len(results) == 0 {
		md.Note("No documents contain every query term.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	md.PlainTextf("%d result(s)", len(results))
	md.PlainText("")

	for i, r := range results {
		md.H3(strconv.Itoa(i+1) + ". " + mdLink(r.Title, r.URL))
		md.PlainText(escapeMarkdown(r.Snippet))
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteDocument outputs a display document. Headings keep their level,
// links become a bullet list entry and paragraphs are written as text.
func (w *MarkdownWriter) WriteDocument(doc *gemtext.Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.PlainTextf("*Source: `%s`*", doc.URL)
	md.PlainText("")

	for _, line := range doc.Lines {
		switch line.Kind {
		case gemtext.LineHeading:
			switch line.Level {
			case 1:
				md.H1(line.Text)
			case 2:
				md.H2(line.Text)
			default:
				md.H3(line.Text)
			}
		case gemtext.LineLink:
			md.BulletList(mdLink(line.Text, line.Target))
		default:
			md.PlainText(escapeMarkdown(line.Text))
		}
	}

	return len(md.String()), md.Build()
}

// WriteHistory outputs crawl runs as a table, with an outcome chart of the
// most recent run.
func (w *MarkdownWriter) WriteHistory(runs []model.CrawlRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl History")
	md.PlainText("")

	if len(runs) == 0 {
		md.Note("No crawl runs recorded.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			"`" + shortID(run.ID) + "`",
			run.StartedAt.Format(timeLayout),
			run.Duration().Round(1e9).String(),
			escapeMarkdown(truncateString(strings.Join(run.Seeds, " "), maxCellLength)),
			strconv.Itoa(run.Stats.Visited),
			strconv.Itoa(run.Stats.Stored),
			strconv.Itoa(run.Stats.Failed),
			runStatus(run),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Started", "Duration", "Seeds", "Visited", "Stored", "Failed", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeOutcomeChart(md, runs[0])

	if runs[0].Stats.StorageErrors > 0 {
		md.Warningf("Latest run could not store %d document(s).", runs[0].Stats.StorageErrors)
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeOutcomeChart writes a mermaid pie chart of the run's outcomes.
func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, run model.CrawlRun) {
	if run.Stats.Visited == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Latest Run Outcomes"),
		piechart.WithShowData(true),
	)

	outcomes := []struct {
		label string
		count int
	}{
		{model.OutcomeStored.String(), run.Stats.Stored},
		{model.OutcomeRedirected.String(), run.Stats.Redirected},
		{model.OutcomeSkipped.String(), run.Stats.Skipped},
		{model.OutcomeFailed.String(), run.Stats.Failed},
	}
	for _, o := range outcomes {
		if o.count > 0 {
			chart.LabelAndIntValue(o.label, uint64(o.count))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [gemsearch](https://github.com/nao1215/gemsearch)*")
}

// mdLink formats an inline link. Brackets in the text are escaped so a
// title cannot close the link early.
func mdLink(text, url string) string {
	text = strings.NewReplacer("[", `\[`, "]", `\]`).Replace(text)
	url = strings.NewReplacer("(", "%28", ")", "%29", " ", "%20").Replace(url)
	return fmt.Sprintf("[%s](%s)", text, url)
}

// markdownEscaper escapes characters that would start markup or break a
// table cell.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"<", "&lt;",
	">", "&gt;",
)

// escapeMarkdown escapes document text for inclusion in Markdown.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

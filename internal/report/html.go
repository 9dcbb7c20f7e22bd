package report

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/gemsearch/internal/gemtext"
	"github.com/nao1215/gemsearch/internal/model"
)

// HTMLWriter outputs standalone HTML pages.
//
// Design decision: Pages are built as a golang.org/x/net/html node tree and
// serialized with html.Render rather than with string templates. Render
// escapes every text node and attribute value, and every link points at the
// proxy entry point, so titles, snippets and document lines taken from
// crawled capsules are always inert.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteResults outputs an ordered list of results. Result links point at
// the proxy path so a browser can read the capsule.
func (w *HTMLWriter) WriteResults(query string, results []model.SearchResult) (int, error) {
	body := element(atom.Body)
	body.AppendChild(textElement(atom.H1, "Search: "+query))

	if len(results) == 0 {
		body.AppendChild(textElement(atom.P, "No results."))
		return w.render("Search: "+query, body)
	}

	body.AppendChild(textElement(atom.P, strconv.Itoa(len(results))+" result(s)"))

	list := element(atom.Ol)
	for _, r := range results {
		item := element(atom.Li)
		item.AppendChild(link(r.Title, gemtext.ProxyHref(r.URL)))
		item.AppendChild(textElement(atom.P, r.Snippet))
		url := textElement(atom.Small, r.URL)
		item.AppendChild(url)
		list.AppendChild(item)
	}
	body.AppendChild(list)

	return w.render("Search: "+query, body)
}

// WriteDocument outputs a display document as a page.
func (w *HTMLWriter) WriteDocument(doc *gemtext.Document) (int, error) {
	body := element(atom.Body)

	for _, line := range doc.Lines {
		switch line.Kind {
		case gemtext.LineHeading:
			body.AppendChild(textElement(headingAtom(line.Level), line.Text))
		case gemtext.LineLink:
			p := element(atom.P)
			p.AppendChild(link(line.Text, line.Href))
			body.AppendChild(p)
		default:
			if strings.TrimSpace(line.Text) == "" {
				body.AppendChild(element(atom.Br))
				continue
			}
			body.AppendChild(textElement(atom.P, line.Text))
		}
	}

	return w.render(doc.Title, body)
}

// WriteHistory outputs crawl runs as a table.
func (w *HTMLWriter) WriteHistory(runs []model.CrawlRun) (int, error) {
	body := element(atom.Body)
	body.AppendChild(textElement(atom.H1, "Crawl History"))

	if len(runs) == 0 {
		body.AppendChild(textElement(atom.P, "No crawl runs recorded."))
		return w.render("Crawl History", body)
	}

	table := element(atom.Table)
	head := element(atom.Tr)
	for _, h := range []string{"Run", "Started", "Duration", "Visited", "Stored", "Failed", "Status"} {
		head.AppendChild(textElement(atom.Th, h))
	}
	table.AppendChild(head)

	for _, run := range runs {
		row := element(atom.Tr)
		for _, cell := range []string{
			shortID(run.ID),
			run.StartedAt.Format(timeLayout),
			run.Duration().Round(1e9).String(),
			strconv.Itoa(run.Stats.Visited),
			strconv.Itoa(run.Stats.Stored),
			strconv.Itoa(run.Stats.Failed),
			runStatus(run),
		} {
			row.AppendChild(textElement(atom.Td, cell))
		}
		table.AppendChild(row)
	}
	body.AppendChild(table)

	return w.render("Crawl History", body)
}

// render wraps body in a document and writes it.
func (w *HTMLWriter) render(title string, body *html.Node) (int, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	head.AppendChild(textElement(atom.Title, title))
	root.AppendChild(head)
	root.AppendChild(body)
	doc.AppendChild(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return 0, err
	}
	buf.WriteByte('\n')

	return w.output.Write(buf.Bytes())
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textElement(a atom.Atom, text string) *html.Node {
	n := element(a)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func link(text, href string) *html.Node {
	n := textElement(atom.A, text)
	n.Attr = []html.Attribute{{Key: "href", Val: href}}
	return n
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	default:
		return atom.H3
	}
}

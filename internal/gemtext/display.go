package gemtext

import (
	"net/url"
	"strings"

	"github.com/nao1215/gemsearch/internal/gemini"
)

// ProxyPath is the entry point that renders a gemini:// document on demand.
const ProxyPath = "/proxy"

// LineKind identifies the kind of a display line.
type LineKind int

const (
	// LineParagraph is body text.
	LineParagraph LineKind = iota
	// LineHeading is a heading of Level 1 to 3.
	LineHeading
	// LineLink is a clickable link.
	LineLink
)

// String returns the lower-case name of the kind.
func (k LineKind) String() string {
	switch k {
	case LineHeading:
		return "heading"
	case LineLink:
		return "link"
	default:
		return "paragraph"
	}
}

// MarshalText encodes the kind by name.
func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Line is one rendered line of a display document.
type Line struct {
	Kind LineKind `json:"kind"`

	// Level is the heading level (1 to 3). Zero for other kinds.
	Level int `json:"level,omitempty"`

	// Text is the line text, the heading text or the link label.
	// It is never escaped.
	Text string `json:"text"`

	// Target is the resolved link target. Empty for other kinds.
	Target string `json:"target,omitempty"`

	// Href is where a clickable link should point: always the proxy entry
	// point for Target, which only renders gemini:// documents.
	Href string `json:"href,omitempty"`
}

// Document is a gemtext document transformed for display.
type Document struct {
	// URL is the base URL of the document.
	URL string `json:"url"`

	// Title is the document title as ExtractTitle returns it.
	Title string `json:"title"`

	// Lines are the rendered lines in source order.
	Lines []Line `json:"lines"`
}

// ProxyHref returns the proxy entry point URL for a gemini:// target.
func ProxyHref(target string) string {
	return ProxyPath + "?url=" + url.QueryEscape(target)
}

// ToDisplay transforms content line by line.
// Link targets are resolved against base and routed through the proxy entry
// point. Link lines without a target are dropped. Heading levels are the
// number of leading '#' characters, capped at 3. Text is passed through
// verbatim.
func ToDisplay(content, base string) *Document {
	doc := &Document{
		URL:   base,
		Title: ExtractTitle(content),
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if l, ok := displayLine(line, base); ok {
			doc.Lines = append(doc.Lines, l)
		}
	}
	return doc
}

func displayLine(line, base string) (Line, bool) {
	if strings.HasPrefix(line, linkPrefix) {
		target, label, ok := parseLink(line)
		if !ok {
			return Line{}, false
		}

		resolved, err := gemini.Resolve(base, target)
		if err != nil {
			resolved = target
		}
		if label == "" {
			label = target
		}

		return Line{Kind: LineLink, Text: label, Target: resolved, Href: ProxyHref(resolved)}, true
	}

	if strings.HasPrefix(line, headingPrefix) {
		return Line{
			Kind:  LineHeading,
			Level: min(headingLevel(line), 3),
			Text:  strings.TrimSpace(strings.TrimLeft(line, headingPrefix)),
		}, true
	}

	return Line{Kind: LineParagraph, Text: line}, true
}

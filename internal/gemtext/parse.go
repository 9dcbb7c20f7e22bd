package gemtext

import (
	"strings"
	"unicode/utf8"

	"github.com/nao1215/gemsearch/internal/gemini"
	"github.com/nao1215/gemsearch/internal/model"
)

const (
	linkPrefix    = "=>"
	headingPrefix = "#"

	// MaxTitleLength is the maximum title length in runes.
	MaxTitleLength = 200
)

// ExtractTitle returns the text of the first level-one heading, trimmed and
// capped at MaxTitleLength runes. Documents without one get
// model.UntitledDocument.
func ExtractTitle(content string) string {
	for line := range strings.Lines(content) {
		if !strings.HasPrefix(line, headingPrefix) || strings.HasPrefix(line, "##") {
			continue
		}
		return truncateRunes(strings.TrimSpace(strings.TrimLeft(line, headingPrefix)), MaxTitleLength)
	}
	return model.UntitledDocument
}

// ExtractLinks returns the gemini:// targets of all link lines in content,
// resolved against base and normalized, in document order.
// Links to other schemes and unparsable targets are dropped. Duplicates
// are kept; deduplication is the crawler's job.
func ExtractLinks(base, content string) []string {
	var links []string
	for line := range strings.Lines(content) {
		target, _, ok := parseLink(line)
		if !ok {
			continue
		}

		resolved, err := gemini.Resolve(base, target)
		if err != nil || !gemini.IsGeminiURL(resolved) {
			continue
		}

		normalized, err := gemini.Normalize(resolved)
		if err != nil {
			continue
		}
		links = append(links, normalized)
	}
	return links
}

// parseLink splits a link line into its target and label.
// The label is empty when the line has none. ok is false for lines that are
// not link lines or carry no target.
func parseLink(line string) (target, label string, ok bool) {
	rest, found := strings.CutPrefix(line, linkPrefix)
	if !found {
		return "", "", false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", "", false
	}
	return fields[0], strings.Join(fields[1:], " "), true
}

// headingLevel returns the number of leading '#' characters of line.
func headingLevel(line string) int {
	return len(line) - len(strings.TrimLeft(line, headingPrefix))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

package gemtext

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// asciiPunctuation is removed before splitting so that "don't" indexes as
// "dont" rather than "don" and "t".
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Tokenize lower-cases content, removes ASCII punctuation and splits the
// rest into runs of letters and digits.
//
//	Tokenize("Hello, World!") // ["hello" "world"]
//	Tokenize("")              // []
func Tokenize(content string) []string {
	lowered := cases.Lower(language.Und).String(content)

	stripped := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, lowered)

	tokens := strings.FieldsFunc(stripped, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// UniqueTerms returns the distinct tokens of content in first-seen order.
func UniqueTerms(content string) []string {
	tokens := Tokenize(content)
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}
	return terms
}

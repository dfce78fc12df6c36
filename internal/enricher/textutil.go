package enricher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents strips combining marks so lexicon matching treats
// "résumé" and "resume" identically.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeText lowercases and replaces non-alphanumeric runes with
// spaces, preserving word boundaries for the automaton matchers.
func normalizeText(text string) string {
	text = strings.ToLower(foldAccents(text))

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else {
			result.WriteByte(' ')
		}
	}
	return result.String()
}

// normalizeTerm is the canonical form used for keyword deduplication.
func normalizeTerm(s string) string {
	return strings.Join(strings.Fields(normalizeText(s)), " ")
}

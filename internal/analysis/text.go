package analysis

import (
	"strings"
	"unicode"
)

// stopwords are excluded from term counting. The set is intentionally
// small; it covers the function words that otherwise dominate log and
// conversation text.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "have": {}, "has": {}, "was": {}, "were": {}, "are": {},
	"not": {}, "you": {}, "but": {}, "they": {}, "there": {}, "what": {},
	"when": {}, "will": {}, "can": {}, "all": {}, "its": {}, "been": {},
	"into": {}, "out": {}, "about": {}, "your": {},
}

// minTermLength filters out short tokens during term counting.
const minTermLength = 3

// tokenize lowercases text and splits it on any non-letter, non-digit run.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// terms returns the tokens of text that are long enough and not stopwords.
func terms(text string) []string {
	tokens := tokenize(text)
	kept := tokens[:0]
	for _, token := range tokens {
		if len(token) < minTermLength {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}

// collapseWhitespace trims text and squeezes internal whitespace runs down
// to single spaces. Control characters count as whitespace.
func collapseWhitespace(text string) string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	return strings.Join(fields, " ")
}

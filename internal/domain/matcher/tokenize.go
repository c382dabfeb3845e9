package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenize lowercases text, folds accents, deletes punctuation and symbols,
// splits on whitespace and returns the distinct terms.
func Tokenize(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Terms(text) {
		set[tok] = struct{}{}
	}
	return set
}

// Terms is Tokenize without deduplication, in input order.
func Terms(text string) []string {
	if text == "" {
		return nil
	}
	folded := foldAccents(strings.ToLower(text))
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, folded)
	return strings.Fields(cleaned)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

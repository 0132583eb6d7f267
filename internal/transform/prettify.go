package transform

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// Prettify turns a machine key such as "lot.areaSqm" or "max_height" into a
// label ("Lot Area Sqm", "Max Height"). Digits never start a new word, so
// "devAppsLast12m" becomes "Dev Apps Last12m".
func Prettify(key string) string {
	tokens := strings.FieldsFunc(key, func(r rune) bool {
		return r == '.' || r == '_'
	})
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		for _, w := range splitCamel(tok) {
			words = append(words, capitalize(w))
		}
	}
	return strings.Join(words, " ")
}

// splitCamel cuts tok between each lowercase letter and the uppercase letter
// after it. Other characters, spaces included, stay in their word.
func splitCamel(tok string) []string {
	var words []string
	start := 0
	for _, loc := range camelBoundary.FindAllStringIndex(tok, -1) {
		cut := loc[0] + 1
		words = append(words, tok[start:cut])
		start = cut
	}
	return append(words, tok[start:])
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

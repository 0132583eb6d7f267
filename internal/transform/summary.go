package transform

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/oakwood-commons/propdash/internal/document"
)

const (
	maxNumericCards = 3
	maxTextCards    = 2
	textCardLimit   = 80

	// TextFieldHint marks summary cards built from string fields.
	TextFieldHint = "text field"
)

// Card is one headline metric shown above the sections.
type Card struct {
	Path  string `json:"path" yaml:"path"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Hint  string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Summarize picks headline cards from flat using the default locale.
func Summarize(flat *Flat) []Card {
	return summarize(flat, defaultNumbers)
}

// summarize returns the three largest numeric entries, then the first two
// strings shorter than 80 characters. It never pads.
func summarize(flat *Flat, numbers NumberFormatter) []Card {
	var numeric, text []FlatEntry
	for _, e := range flat.Entries() {
		switch e.Value.Kind() {
		case document.Number:
			numeric = append(numeric, e)
		case document.String:
			if utf8.RuneCountInString(e.Value.Str()) < textCardLimit {
				text = append(text, e)
			}
		case document.Null, document.Bool, document.Array, document.Object:
		}
	}

	sort.SliceStable(numeric, func(i, j int) bool {
		return descending(numeric[i].Value.Float(), numeric[j].Value.Float())
	})

	cards := make([]Card, 0, maxNumericCards+maxTextCards)
	for _, e := range numeric[:min(len(numeric), maxNumericCards)] {
		cards = append(cards, Card{
			Path:  e.Path,
			Label: Prettify(e.Path),
			Value: numbers.Format(e.Value.Float()),
		})
	}
	for _, e := range text[:min(len(text), maxTextCards)] {
		cards = append(cards, Card{
			Path:  e.Path,
			Label: Prettify(e.Path),
			Value: e.Value.Str(),
			Hint:  TextFieldHint,
		})
	}
	return cards
}

// descending orders larger values first and NaN after everything else.
func descending(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

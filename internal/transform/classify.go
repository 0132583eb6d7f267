package transform

import (
	"unicode/utf8"

	"github.com/oakwood-commons/propdash/internal/document"
)

// ShortTextLimit is the exclusive upper bound, in characters, for a string to
// be shown inline as short text.
const ShortTextLimit = 120

// Kind selects the widget a value is rendered with.
type Kind int

const (
	KindStructured Kind = iota
	KindNumeric
	KindBoolean
	KindShortText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindShortText:
		return "short-text"
	default:
		return "structured"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classify picks the display kind for v. Empty or long strings, arrays,
// objects and null are all structured.
func Classify(v document.Value) Kind {
	switch v.Kind() {
	case document.Number:
		return KindNumeric
	case document.Bool:
		return KindBoolean
	case document.String:
		n := utf8.RuneCountInString(v.Str())
		if n > 0 && n < ShortTextLimit {
			return KindShortText
		}
		return KindStructured
	case document.Null, document.Array, document.Object:
		return KindStructured
	}
	return KindStructured
}

package transform

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/oakwood-commons/propdash/internal/document"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en-US"

const (
	groupingThreshold = 1000
	maxFractionDigits = 3
)

// NumberFormatter renders numbers for display in a fixed locale.
type NumberFormatter struct {
	printer *message.Printer
}

var defaultNumbers = NumberFormatter{printer: message.NewPrinter(language.AmericanEnglish)}

// NewNumberFormatter returns a formatter for the BCP 47 locale tag. An empty
// tag selects DefaultLocale.
func NewNumberFormatter(locale string) (NumberFormatter, error) {
	if locale == "" {
		return defaultNumbers, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return NumberFormatter{}, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return NumberFormatter{printer: message.NewPrinter(tag)}, nil
}

// Format renders n. Values of magnitude 1000 or more get thousands grouping;
// smaller values print as plain decimals; NaN and infinities print literally.
func (f NumberFormatter) Format(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return document.FormatFloat(n)
	}
	if math.Abs(n) < groupingThreshold {
		return document.FormatFloat(n)
	}
	p := f.printer
	if p == nil {
		p = defaultNumbers.printer
	}
	return p.Sprintf("%v", number.Decimal(n, number.MaxFractionDigits(maxFractionDigits)))
}

// FormatNumber renders n in DefaultLocale.
func FormatNumber(n float64) string {
	return defaultNumbers.Format(n)
}

package transform

import (
	"strconv"

	"github.com/oakwood-commons/propdash/internal/document"
)

// RowView is a row ready for display.
type RowView struct {
	Key     string         `json:"key" yaml:"key"`
	Label   string         `json:"label" yaml:"label"`
	Kind    Kind           `json:"kind" yaml:"kind"`
	Display string         `json:"display" yaml:"display"`
	Value   document.Value `json:"value" yaml:"-"`
}

// SectionView is a section ready for display.
type SectionView struct {
	Title string    `json:"title" yaml:"title"`
	Path  string    `json:"path" yaml:"path"`
	Rows  []RowView `json:"rows" yaml:"rows"`
}

// Report is everything one rendering pass derives from a raw document.
type Report struct {
	Summary  []Card        `json:"summary" yaml:"summary"`
	Sections []SectionView `json:"sections" yaml:"sections"`
}

// RowCount totals the rows across all sections.
func (r Report) RowCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Rows)
	}
	return n
}

// Builder derives reports with a configured number format.
type Builder struct {
	numbers NumberFormatter
}

// Option configures a Builder.
type Option func(*Builder)

// WithNumberFormatter sets the formatter used for numeric rows and cards.
func WithNumberFormatter(f NumberFormatter) Option {
	return func(b *Builder) {
		b.numbers = f
	}
}

// NewBuilder returns a Builder using DefaultLocale unless overridden.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{numbers: defaultNumbers}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the default Builder.
func Build(doc document.Value) Report {
	return NewBuilder().Build(doc)
}

// Build derives the summary from the flattened document and, independently,
// the sections from the grouped document.
func (b *Builder) Build(doc document.Value) Report {
	report := Report{
		Summary:  summarize(Flatten(doc, nil), b.numbers),
		Sections: []SectionView{},
	}
	for _, s := range CollectSections(doc, "") {
		view := SectionView{Title: s.Title, Path: s.Path, Rows: make([]RowView, len(s.Rows))}
		for i, row := range s.Rows {
			view.Rows[i] = b.row(row)
		}
		report.Sections = append(report.Sections, view)
	}
	return report
}

func (b *Builder) row(r Row) RowView {
	kind := Classify(r.Value)
	return RowView{
		Key:     r.Key,
		Label:   Prettify(r.Key),
		Kind:    kind,
		Display: b.Display(r.Value, kind),
		Value:   r.Value,
	}
}

// Display renders v as text for its kind. Structured strings are shown
// verbatim; other structured values are shown as compact JSON.
func (b *Builder) Display(v document.Value, kind Kind) string {
	switch kind {
	case KindNumeric:
		return b.numbers.Format(v.Float())
	case KindBoolean:
		return strconv.FormatBool(v.Bool())
	case KindShortText:
		return v.Str()
	case KindStructured:
		if v.Kind() == document.String {
			return v.Str()
		}
	}
	return v.String()
}

// Package search narrows reports by free text and selects parts of a raw
// document with CEL expressions.
package search

import (
	"strings"

	"github.com/oakwood-commons/propdash/internal/transform"
)

// Filter keeps the parts of r that mention term, ignoring case. A section
// whose title or path matches is kept whole; otherwise only its matching
// rows survive and it is dropped when none do. Cards are kept when their
// label or value matches. A blank term returns r unchanged. The result
// always carries non-nil slices so it encodes as empty JSON arrays.
func Filter(r transform.Report, term string) transform.Report {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return r
	}

	out := transform.Report{
		Summary:  []transform.Card{},
		Sections: []transform.SectionView{},
	}
	for _, c := range r.Summary {
		if contains(needle, c.Label, c.Value, c.Path) {
			out.Summary = append(out.Summary, c)
		}
	}
	for _, s := range r.Sections {
		if contains(needle, s.Title, s.Path) {
			out.Sections = append(out.Sections, s)
			continue
		}
		var rows []transform.RowView
		for _, row := range s.Rows {
			if contains(needle, row.Key, row.Label, row.Display) {
				rows = append(rows, row)
			}
		}
		if len(rows) > 0 {
			s.Rows = rows
			out.Sections = append(out.Sections, s)
		}
	}
	return out
}

// Matches reports whether Filter would keep anything of r.
func Matches(r transform.Report, term string) bool {
	f := Filter(r, term)
	return len(f.Summary) > 0 || len(f.Sections) > 0
}

func contains(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

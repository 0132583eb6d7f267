package formatter

import (
	"strings"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/propdash/internal/transform"
)

// RenderTree renders the report as an ASCII tree: a Summary branch of cards
// followed by one branch per section, rows as "Label: value" leaves.
func RenderTree(r transform.Report) string {
	tree := treeprint.NewWithRoot("Report")

	if len(r.Summary) > 0 {
		summary := tree.AddBranch("Summary")
		for _, c := range r.Summary {
			summary.AddNode(formatKeyValue(c.Label, escapeNewlines(c.Value)))
		}
	}
	for _, s := range r.Sections {
		branch := tree.AddBranch(sectionLabel(s))
		if len(s.Rows) == 0 {
			branch.AddNode("(empty)")
			continue
		}
		for _, row := range s.Rows {
			branch.AddNode(formatKeyValue(row.Label, escapeNewlines(row.Display)))
		}
	}
	return tree.String()
}

func sectionLabel(s transform.SectionView) string {
	if s.Path == "" || s.Path == strings.ToLower(s.Title) {
		return s.Title
	}
	return s.Title + " (" + s.Path + ")"
}

// formatKeyValue formats a key-value pair for display.
// If key is empty, returns just the value.
func formatKeyValue(key, value string) string {
	if key == "" {
		return value
	}
	return key + ": " + value
}

package formatter

import (
	"strings"

	"github.com/oakwood-commons/propdash/internal/transform"
)

// RenderMarkdown renders the report as GitHub-flavored Markdown: a bullet
// list of summary cards and a two-column table per section.
func RenderMarkdown(r transform.Report) string {
	var b strings.Builder
	if len(r.Summary) > 0 {
		b.WriteString("## Summary\n\n")
		for _, c := range r.Summary {
			b.WriteString("- **" + escapeMarkdown(c.Label) + "**: " + escapeMarkdown(c.Value))
			if c.Hint != "" {
				b.WriteString(" _(" + escapeMarkdown(c.Hint) + ")_")
			}
			b.WriteString("\n")
		}
	}
	for _, s := range r.Sections {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## " + escapeMarkdown(s.Title) + "\n\n")
		if len(s.Rows) == 0 {
			b.WriteString("_No fields._\n")
			continue
		}
		b.WriteString("| Key | Value |\n| --- | --- |\n")
		for _, row := range s.Rows {
			value := escapeCell(row.Display)
			if row.Value.IsArray() || row.Value.IsObject() {
				value = "`" + strings.ReplaceAll(value, "`", "'") + "`"
			}
			b.WriteString("| " + escapeCell(row.Label) + " | " + value + " |\n")
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(escapeNewlines(s))
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(escapeNewlines(s), "|", `\|`)
	return strings.TrimSpace(s)
}

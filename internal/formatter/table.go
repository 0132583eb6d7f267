package formatter

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/propdash/internal/transform"
)

const (
	sepWidth      = 2
	maxCardWidth  = 32
	minValueWidth = 10
)

// RenderTable draws the summary as bordered cards followed by one KEY/VALUE
// table per section, fitted to width display cells.
func RenderTable(r transform.Report, width, keyColWidth int, st styles) string {
	if width <= 0 {
		width = 120
	}
	if len(r.Summary) == 0 && len(r.Sections) == 0 {
		return st.muted.Render("No data to display.") + "\n"
	}

	var b strings.Builder
	if cards := renderCards(r.Summary, width, st); cards != "" {
		b.WriteString(cards)
		b.WriteString("\n")
	}
	for i, s := range r.Sections {
		if i > 0 || len(r.Summary) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderSection(s, width, keyColWidth, st))
	}
	return b.String()
}

func renderCards(cards []transform.Card, width int, st styles) string {
	if len(cards) == 0 {
		return ""
	}
	inner := maxCardWidth
	// border and padding take four cells
	if width-4 < inner {
		inner = width - 4
	}
	if inner < 8 {
		inner = 8
	}

	var rows []string
	var line []string
	lineWidth := 0
	for _, c := range cards {
		body := st.cardLabel.Render(truncate(c.Label, inner)) + "\n" +
			st.cardValue.Render(truncate(escapeNewlines(c.Value), inner))
		if c.Hint != "" {
			body += "\n" + st.muted.Render(truncate(c.Hint, inner))
		}
		box := st.card.Render(body)
		w := lipgloss.Width(box)
		if len(line) > 0 && lineWidth+1+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
			line, lineWidth = nil, 0
		}
		if len(line) > 0 {
			line = append(line, " ")
			lineWidth++
		}
		line = append(line, box)
		lineWidth += w
	}
	if len(line) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func renderSection(s transform.SectionView, width, keyColWidth int, st styles) string {
	var b strings.Builder
	title := st.title.Render(s.Title)
	if s.Path != "" && s.Path != strings.ToLower(s.Title) {
		title += " " + st.muted.Render("("+s.Path+")")
	}
	b.WriteString(title + "\n")

	keyWidth, valueWidth := columnWidths(s.Rows, width, keyColWidth)
	sep := strings.Repeat(" ", sepWidth)

	b.WriteString(st.header.Render(padRight("KEY", keyWidth)) + sep + st.header.Render(padRight("VALUE", valueWidth)) + "\n")
	b.WriteString(st.separator.Render(strings.Repeat("─", keyWidth+sepWidth+valueWidth)) + "\n")

	numWidth := 0
	for _, row := range s.Rows {
		if row.Kind == transform.KindNumeric {
			if w := runewidth.StringWidth(row.Display); w > numWidth {
				numWidth = w
			}
		}
	}

	for _, row := range s.Rows {
		display := escapeNewlines(row.Display)
		if row.Kind == transform.KindNumeric && numWidth <= valueWidth {
			display = padLeft(display, numWidth)
		}
		keyStr := padRight(truncate(row.Label, keyWidth), keyWidth)
		valStr := truncate(display, valueWidth)
		b.WriteString(st.key.Render(keyStr) + sep + st.value.Render(valStr) + "\n")
	}
	return b.String()
}

// columnWidths sizes the KEY column to its content unless fixed, giving the
// rest of width to VALUE. An overlong KEY column is capped at 30% of width.
func columnWidths(rows []transform.RowView, width, keyColWidth int) (int, int) {
	keyWidth := keyColWidth
	valueNeed := len("VALUE")
	natural := len("KEY")
	for _, row := range rows {
		if w := runewidth.StringWidth(row.Label); w > natural {
			natural = w
		}
		if w := runewidth.StringWidth(escapeNewlines(row.Display)); w > valueNeed {
			valueNeed = w
		}
	}
	if keyWidth <= 0 {
		keyWidth = natural
		if keyWidth+sepWidth+valueNeed > width {
			if limit := width * 30 / 100; keyWidth > limit {
				keyWidth = limit
			}
		}
		if keyWidth < 5 {
			keyWidth = 5
		}
	}

	valueWidth := width - keyWidth - sepWidth
	if valueWidth > valueNeed {
		valueWidth = valueNeed
	}
	if valueWidth < minValueWidth {
		valueWidth = minValueWidth
	}
	return keyWidth, valueWidth
}

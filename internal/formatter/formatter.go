package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/propdash/internal/config"
	"github.com/oakwood-commons/propdash/internal/transform"
)

// Format names an output rendering.
type Format string

const (
	FormatTable    Format = "table"
	FormatTree     Format = "tree"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported output in help order.
var Formats = []Format{FormatTable, FormatTree, FormatMarkdown, FormatJSON, FormatYAML}

// ParseFormat validates a user-supplied format name. "md" and "yml" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case FormatTable, FormatTree, FormatMarkdown, FormatJSON, FormatYAML:
		return f, nil
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("invalid output format %q: valid values are %s", s, strings.Join(names, ", "))
}

var (
	defaultHeaderFG   = lipgloss.Color("15")
	defaultHeaderBG   = lipgloss.Color("24")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("252")
	defaultSeparator  = lipgloss.Color("240")
	defaultAccent     = lipgloss.Color("214")
	defaultMuted      = lipgloss.Color("245")
)

// TableColors controls the rendered colors. Nil fields fall back to the
// built-in defaults (ANSI 256 codes).
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	AccentColor    color.Color
	MutedColor     color.Color
}

// ColorsFromConfig maps configured colour strings onto TableColors. Empty
// strings keep the default.
func ColorsFromConfig(tc config.ThemeConfig) TableColors {
	pick := func(s string) color.Color {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return lipgloss.Color(s)
	}
	return TableColors{
		HeaderFG:       pick(tc.HeaderFG),
		HeaderBG:       pick(tc.HeaderBG),
		KeyColor:       pick(tc.KeyColor),
		ValueColor:     pick(tc.ValueColor),
		SeparatorColor: pick(tc.SeparatorColor),
		AccentColor:    pick(tc.AccentColor),
		MutedColor:     pick(tc.MutedColor),
	}
}

// Accent is the accent colour, or the default when unset.
func (c TableColors) Accent() color.Color { return orDefault(c.AccentColor, defaultAccent) }

// Muted is the muted colour, or the default when unset.
func (c TableColors) Muted() color.Color { return orDefault(c.MutedColor, defaultMuted) }

func orDefault(c, fallback color.Color) color.Color {
	if c == nil {
		return fallback
	}
	return c
}

type styles struct {
	noColor   bool
	header    lipgloss.Style
	title     lipgloss.Style
	key       lipgloss.Style
	value     lipgloss.Style
	separator lipgloss.Style
	card      lipgloss.Style
	cardLabel lipgloss.Style
	cardValue lipgloss.Style
	muted     lipgloss.Style
}

func newStyles(tc TableColors, noColor bool) styles {
	card := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			noColor: true, header: plain, title: plain, key: plain, value: plain,
			separator: plain, card: card, cardLabel: plain, cardValue: plain, muted: plain,
		}
	}
	accent := tc.Accent()
	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(orDefault(tc.HeaderFG, defaultHeaderFG)).Background(orDefault(tc.HeaderBG, defaultHeaderBG)),
		title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		key:       lipgloss.NewStyle().Foreground(orDefault(tc.KeyColor, defaultKeyColor)),
		value:     lipgloss.NewStyle().Foreground(orDefault(tc.ValueColor, defaultValueColor)),
		separator: lipgloss.NewStyle().Foreground(orDefault(tc.SeparatorColor, defaultSeparator)),
		card:      card.BorderForeground(accent),
		cardLabel: lipgloss.NewStyle().Foreground(tc.Muted()),
		cardValue: lipgloss.NewStyle().Bold(true).Foreground(orDefault(tc.ValueColor, defaultValueColor)),
		muted:     lipgloss.NewStyle().Foreground(tc.Muted()),
	}
}

// Options control Render.
type Options struct {
	Format Format
	// Width bounds table output; 0 uses the terminal width.
	Width int
	// KeyColWidth fixes the KEY column; 0 sizes it to the content.
	KeyColWidth int
	NoColor     bool
	Colors      TableColors
}

// Render writes r in the requested format.
func Render(r transform.Report, opts Options) (string, error) {
	switch opts.Format {
	case FormatTable, "":
		width := opts.Width
		if width <= 0 {
			width = TerminalWidth()
		}
		return RenderTable(r, width, opts.KeyColWidth, newStyles(opts.Colors, opts.NoColor)), nil
	case FormatTree:
		return RenderTree(r), nil
	case FormatMarkdown:
		return RenderMarkdown(r), nil
	case FormatJSON:
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(b) + "\n", nil
	case FormatYAML:
		return FormatYAMLReport(r)
	}
	return "", fmt.Errorf("unsupported output format %q", opts.Format)
}

// TerminalWidth returns the terminal width, or a default if detection fails.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}

// escapeNewlines keeps table cells on one line.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}

// truncate cuts s to maxLen display cells, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

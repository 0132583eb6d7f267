// Package tui is the interactive report browser: a scrollable table view
// with a live search box.
package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/propdash/internal/formatter"
	"github.com/oakwood-commons/propdash/internal/search"
	"github.com/oakwood-commons/propdash/internal/transform"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	helpLine      = "/ search • ↑/↓ j/k scroll • pgup/pgdn page • esc clear • q quit"
)

// Options configure the browser.
type Options struct {
	Title       string
	NoColor     bool
	KeyColWidth int
	Colors      formatter.TableColors
	// InitialFilter pre-fills the search box.
	InitialFilter string
}

// Model is the bubbletea model for the browser.
type Model struct {
	report  transform.Report
	visible transform.Report
	opts    Options

	search    textinput.Model
	searching bool

	lines  []string
	offset int
	width  int
	height int

	titleStyle lipgloss.Style
	mutedStyle lipgloss.Style
}

// NewModel builds a browser over r.
func NewModel(r transform.Report, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "filter sections and fields"
	ti.CharLimit = 200
	ti.SetWidth(defaultWidth - 10)
	ti.Prompt = "/ "
	ti.SetValue(opts.InitialFilter)

	m := &Model{
		report: r,
		opts:   opts,
		search: ti,
		width:  defaultWidth,
		height: defaultHeight,
	}
	if opts.Title == "" {
		m.opts.Title = "propdash"
	}
	if opts.NoColor {
		m.titleStyle = lipgloss.NewStyle()
		m.mutedStyle = lipgloss.NewStyle()
	} else {
		m.titleStyle = lipgloss.NewStyle().Bold(true).Foreground(opts.Colors.Accent())
		m.mutedStyle = lipgloss.NewStyle().Foreground(opts.Colors.Muted())
	}
	m.refilter()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.search.SetWidth(max(10, m.width-10))
		m.relayout()
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.refilter()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m *Model) updateBrowse(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.refilter()
		}
	case "down", "j":
		m.scroll(1)
	case "up", "k":
		m.scroll(-1)
	case "pgdown", "space", "f":
		m.scroll(m.bodyHeight())
	case "pgup", "b":
		m.scroll(-m.bodyHeight())
	case "home", "g":
		m.offset = 0
	case "end", "G":
		m.offset = m.maxOffset()
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render draws the current screen as text.
func (m *Model) Render() string {
	var b strings.Builder

	header := m.titleStyle.Render(m.opts.Title)
	if f := m.Filter(); f != "" {
		header += m.mutedStyle.Render(fmt.Sprintf("  filter %q: %d of %d rows", f, m.visible.RowCount(), m.report.RowCount()))
	}
	b.WriteString(header + "\n")

	body := m.bodyHeight()
	end := min(len(m.lines), m.offset+body)
	shown := 0
	for _, line := range m.lines[m.offset:end] {
		b.WriteString(line + "\n")
		shown++
	}
	for ; shown < body; shown++ {
		b.WriteString("\n")
	}

	if m.searching {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString(m.mutedStyle.Render(m.footer()))
	return b.String()
}

func (m *Model) footer() string {
	if len(m.lines) > m.bodyHeight() {
		return fmt.Sprintf("%s  [%d-%d/%d]", helpLine, m.offset+1, min(len(m.lines), m.offset+m.bodyHeight()), len(m.lines))
	}
	return helpLine
}

// Filter is the active search term.
func (m *Model) Filter() string {
	return strings.TrimSpace(m.search.Value())
}

// Searching reports whether the search box has focus.
func (m *Model) Searching() bool { return m.searching }

// Offset is the index of the first body line on screen.
func (m *Model) Offset() int { return m.offset }

// Visible is the report after filtering.
func (m *Model) Visible() transform.Report { return m.visible }

func (m *Model) refilter() {
	m.visible = search.Filter(m.report, m.search.Value())
	m.offset = 0
	m.relayout()
}

func (m *Model) relayout() {
	out, err := formatter.Render(m.visible, formatter.Options{
		Format:      formatter.FormatTable,
		Width:       m.width,
		KeyColWidth: m.opts.KeyColWidth,
		NoColor:     m.opts.NoColor,
		Colors:      m.opts.Colors,
	})
	if err != nil {
		out = err.Error()
	}
	if len(m.visible.Sections) == 0 && len(m.visible.Summary) == 0 && m.Filter() != "" {
		out = m.mutedStyle.Render("Nothing matches the filter. Press esc to clear it.")
	}
	m.lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
	m.offset = min(m.offset, m.maxOffset())
}

func (m *Model) bodyHeight() int {
	// header and footer lines, plus the search box when open
	h := m.height - 2
	if m.searching {
		h--
	}
	return max(1, h)
}

func (m *Model) maxOffset() int {
	return max(0, len(m.lines)-m.bodyHeight())
}

func (m *Model) scroll(delta int) {
	m.offset = max(0, min(m.maxOffset(), m.offset+delta))
}

// Run starts the browser and blocks until the user quits or ctx ends.
func Run(ctx context.Context, r transform.Report, opts Options, progOpts ...tea.ProgramOption) error {
	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	_, err := tea.NewProgram(NewModel(r, opts), progOpts...).Run()
	return err
}

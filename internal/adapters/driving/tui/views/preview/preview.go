// Package preview provides the table preview view for the TUI.
package preview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/htmltab/internal/core/domain"
)

const (
	maxColumnWidth = 30
	minColumnWidth = 3
	chromeHeight   = 5
)

// View shows the cells of a single table.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	table  table.Model
	index  int
	source domain.Table
	width  int
	height int
}

// NewView creates a new preview view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles: s,
		keymap: km,
		index:  -1,
		width:  80,
		height: 24,
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(24-chromeHeight),
			table.WithStyles(s.Table()),
		),
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetTable shows the table found at index.
// A header row becomes the column titles; otherwise columns are numbered.
func (v *View) SetTable(index int, t domain.Table) {
	v.index = index
	v.source = t

	titles, rows := layout(t)
	v.table.SetRows(nil)
	v.table.SetColumns(columns(titles, rows))
	v.table.SetRows(rows)
	v.table.SetCursor(0)
}

// Index returns the index of the previewed table, or -1.
func (v *View) Index() int {
	return v.index
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.table.SetWidth(width)
	v.table.SetHeight(max(height-chromeHeight, 3))
}

// Update handles messages for the preview.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && keymap.Matches(msg.String(), v.keymap.Back) {
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewTables} }
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

// View renders the preview.
func (v *View) View() string {
	if v.index < 0 {
		return v.styles.Muted.Render("No table selected")
	}

	var b strings.Builder
	title := fmt.Sprintf("Table %d · %d rows × %d columns", v.index, len(v.source.Rows), v.source.Width())
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.source.Caption != "" {
		b.WriteString(v.styles.Subtitle.Render(v.source.Caption))
	}
	b.WriteString("\n\n")

	if v.source.Width() == 0 {
		b.WriteString(v.styles.Muted.Render("Table has no cells"))
		return b.String()
	}

	b.WriteString(v.table.View())
	return b.String()
}

// layout splits a table into column titles and body rows.
func layout(t domain.Table) ([]string, []table.Row) {
	matrix := t.Matrix()
	width := t.Width()

	titles := make([]string, width)
	if t.HasHeaderRow() && len(matrix) > 0 {
		copy(titles, matrix[0])
		matrix = matrix[1:]
	} else {
		for i := range titles {
			titles[i] = strconv.Itoa(i + 1)
		}
	}

	rows := make([]table.Row, len(matrix))
	for i, line := range matrix {
		rows[i] = table.Row(line)
	}
	return titles, rows
}

// columns sizes each column to its widest cell within the bounds.
func columns(titles []string, rows []table.Row) []table.Column {
	cols := make([]table.Column, len(titles))
	for i, title := range titles {
		width := lipgloss.Width(title)
		for _, r := range rows {
			width = max(width, lipgloss.Width(r[i]))
		}
		cols[i] = table.Column{
			Title: title,
			Width: min(max(width, minColumnWidth), maxColumnWidth),
		}
	}
	return cols
}

// Package tables provides the table list view for the TUI.
package tables

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/selection"
)

// Fixed column widths; the caption takes whatever is left.
const (
	indexWidth   = 5
	rowsWidth    = 6
	colsWidth    = 6
	scoreWidth   = 7
	classWidth   = 20
	minCaption   = 10
	cellPadding  = 2
	chromeHeight = 4
)

// View lists every table of an extraction, one row per table.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	table      table.Model
	extraction *domain.Extraction
	width      int
	height     int
}

// NewView creates a new table list view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{styles: s, keymap: km, width: 80, height: 24}
	v.table = table.New(
		table.WithColumns(v.columns()),
		table.WithFocused(true),
		table.WithHeight(v.height-chromeHeight),
		table.WithStyles(s.Table()),
	)
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetExtraction replaces the listed tables and moves the cursor to the
// selected table.
func (v *View) SetExtraction(e *domain.Extraction) {
	v.extraction = e
	v.table.SetRows(nil)
	v.table.SetColumns(v.columns())
	v.table.SetRows(v.rows())

	cursor := 0
	if e != nil && e.Selected >= 0 && e.Selected < len(e.Tables) {
		cursor = e.Selected
	}
	v.table.SetCursor(cursor)
}

// Extraction returns the extraction being listed.
func (v *View) Extraction() *domain.Extraction {
	return v.extraction
}

// Cursor returns the index of the highlighted table.
func (v *View) Cursor() int {
	return v.table.Cursor()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.table.SetWidth(width)
	v.table.SetHeight(max(height-chromeHeight, 3))

	cursor := v.table.Cursor()
	v.table.SetRows(nil)
	v.table.SetColumns(v.columns())
	v.table.SetRows(v.rows())
	v.table.SetCursor(cursor)
}

// Update handles messages for the table list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && keymap.Matches(msg.String(), v.keymap.Select) {
		if v.extraction == nil || len(v.extraction.Tables) == 0 {
			return v, nil
		}
		index := v.table.Cursor()
		return v, func() tea.Msg { return messages.TableSelected{Index: index} }
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

// View renders the table list.
func (v *View) View() string {
	var b strings.Builder

	if v.extraction == nil {
		b.WriteString(v.styles.Muted.Render("No extraction loaded"))
		return b.String()
	}

	b.WriteString(v.styles.Subtitle.Render(v.extraction.Source.Location))
	b.WriteString("\n\n")

	if len(v.extraction.Tables) == 0 {
		b.WriteString(v.styles.Muted.Render("No tables found"))
		return b.String()
	}

	b.WriteString(v.table.View())
	return b.String()
}

func (v *View) columns() []table.Column {
	fixed := indexWidth + rowsWidth + colsWidth + scoreWidth + classWidth
	caption := v.width - fixed - 6*cellPadding
	if caption < minCaption {
		caption = minCaption
	}
	return []table.Column{
		{Title: "#", Width: indexWidth},
		{Title: "Rows", Width: rowsWidth},
		{Title: "Cols", Width: colsWidth},
		{Title: "Score", Width: scoreWidth},
		{Title: "Class", Width: classWidth},
		{Title: "Caption", Width: caption},
	}
}

func (v *View) rows() []table.Row {
	if v.extraction == nil {
		return nil
	}

	rows := make([]table.Row, len(v.extraction.Tables))
	for i, t := range v.extraction.Tables {
		marker := strconv.Itoa(i)
		if i == v.extraction.Selected {
			marker = "*" + marker
		}
		rows[i] = table.Row{
			marker,
			strconv.Itoa(len(t.Rows)),
			strconv.Itoa(t.Width()),
			scoreText(v.extraction.Scores, i),
			t.Class(),
			t.Caption,
		}
	}
	return rows
}

// scoreText renders a selector score, or "-" when the table was not scored
// or did not qualify.
func scoreText(scores []int, i int) string {
	if i >= len(scores) || scores[i] == selection.Disqualified {
		return "-"
	}
	return fmt.Sprint(scores[i])
}

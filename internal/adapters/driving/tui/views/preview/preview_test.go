package preview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/htmltab/internal/core/domain"
)

func row(kind domain.CellKind, texts ...string) domain.Row {
	r := make(domain.Row, len(texts))
	for i, text := range texts {
		r[i] = domain.Cell{Kind: kind, Text: text}
	}
	return r
}

func languages() domain.Table {
	return domain.Table{
		Caption: "Languages",
		Rows: []domain.Row{
			row(domain.CellHeader, "Name", "Year"),
			row(domain.CellData, "Go", "2009"),
			row(domain.CellData, "Rust"),
		},
	}
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, nil)

	require.NotNil(t, v)
	assert.Equal(t, -1, v.Index())
	assert.Nil(t, v.Init())
	assert.Contains(t, v.View(), "No table selected")
}

func TestView_SetTable_HeaderRow(t *testing.T) {
	v := NewView(nil, nil)

	v.SetTable(2, languages())

	assert.Equal(t, 2, v.Index())
	view := v.View()
	assert.Contains(t, view, "Table 2 · 3 rows × 2 columns")
	assert.Contains(t, view, "Languages")
	assert.Contains(t, view, "Name")
	assert.Contains(t, view, "2009")
	assert.Contains(t, view, "Rust")
}

func TestLayout(t *testing.T) {
	t.Run("header row becomes titles", func(t *testing.T) {
		titles, rows := layout(languages())

		assert.Equal(t, []string{"Name", "Year"}, titles)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"Rust", ""}, []string(rows[1]))
	})

	t.Run("numbered titles without header", func(t *testing.T) {
		tbl := domain.Table{Rows: []domain.Row{row(domain.CellData, "a", "b", "c")}}

		titles, rows := layout(tbl)

		assert.Equal(t, []string{"1", "2", "3"}, titles)
		assert.Len(t, rows, 1)
	})
}

func TestColumns_WidthBounds(t *testing.T) {
	long := strings.Repeat("x", 80)
	titles := []string{"a", "b"}

	cols := columns(titles, nil)
	assert.Equal(t, minColumnWidth, cols[0].Width)

	cols = columns([]string{long, "b"}, nil)
	assert.Equal(t, maxColumnWidth, cols[0].Width)
	assert.Equal(t, minColumnWidth, cols[1].Width)
}

func TestView_Update_EscGoesBack(t *testing.T) {
	v := NewView(nil, nil)
	v.SetTable(0, languages())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewTables}, cmd())
}

func TestView_Update_Navigates(t *testing.T) {
	v := NewView(nil, nil)
	v.SetTable(0, languages())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})

	assert.Equal(t, 1, v.table.Cursor())
}

func TestView_EmptyCells(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(100, 40)

	v.SetTable(0, domain.Table{Rows: []domain.Row{{}}})

	assert.Contains(t, v.View(), "Table has no cells")
}

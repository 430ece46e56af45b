package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/htmltab/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateLoading, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.TableCount())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains []string
	}{
		{
			name:     "loading",
			setup:    func(b *Bar) {},
			contains: []string{"Extracting...", "q: quit"},
		},
		{
			name: "tables",
			setup: func(b *Bar) {
				b.SetState(StateTables)
				b.SetTableCount(3)
				b.SetFormat(domain.FormatJSON)
			},
			contains: []string{"3 tables", "json", "enter: preview", "w: write"},
		},
		{
			name: "preview",
			setup: func(b *Bar) {
				b.SetState(StatePreview)
			},
			contains: []string{"esc: back"},
		},
		{
			name: "message",
			setup: func(b *Bar) {
				b.SetState(StateTables)
				b.SetMessage("wrote page_table_1.csv")
			},
			contains: []string{"wrote page_table_1.csv"},
		},
		{
			name: "error",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("no tables found")
			},
			contains: []string{"Error: no tables found"},
		},
		{
			name: "help",
			setup: func(b *Bar) {
				b.SetState(StateHelp)
			},
			contains: []string{"Help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			tt.setup(bar)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestStatusBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotPanics(t, func() { _ = bar.View() })
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")

	bar.Clear()

	assert.Equal(t, StateTables, bar.State())
	assert.Empty(t, bar.Message())
}

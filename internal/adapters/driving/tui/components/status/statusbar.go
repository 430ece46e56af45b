// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateLoading State = "loading"
	StateTables  State = "tables"
	StatePreview State = "preview"
	StateHelp    State = "help"
	StateError   State = "error"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	tableCount int
	format     domain.OutputFormat
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateLoading,
		format: domain.FormatCSV,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state, or the last message when one is set.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateLoading:
		return s.styles.Muted.Render("Extracting...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateHelp:
		return s.styles.Normal.Render("Help")
	case StateTables, StatePreview:
		if s.message != "" {
			return s.styles.Success.Render(s.message)
		}
		return s.styles.Normal.Render(fmt.Sprintf("%d tables · %s", s.tableCount, s.format))
	}
	return s.styles.Muted.Render("Ready")
}

// renderRight renders keybinding hints for the current state.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.state {
	case StateTables:
		bindings = s.keymap.TablesHelp()
	case StatePreview:
		bindings = s.keymap.PreviewHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a transient message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetTableCount sets the number of tables found.
func (s *Bar) SetTableCount(count int) {
	s.tableCount = count
}

// TableCount returns the number of tables found.
func (s *Bar) TableCount() int {
	return s.tableCount
}

// SetFormat sets the export format shown in the bar.
func (s *Bar) SetFormat(format domain.OutputFormat) {
	s.format = format
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear drops the message and returns to the table list state.
func (s *Bar) Clear() {
	s.state = StateTables
	s.message = ""
}

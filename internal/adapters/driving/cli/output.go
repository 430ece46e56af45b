package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

var (
	indexStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

// printTableList writes one summary line per table:
//
//	[i] rows=R cols=C class='...' caption='...'
//
// Terminals get a coloured index and the selected table highlighted.
func printTableList(w io.Writer, e *domain.Extraction) {
	styled := isTerminal(w)
	for _, s := range e.Summaries() {
		index := fmt.Sprintf("[%d]", s.Index)
		rest := fmt.Sprintf("rows=%d cols=%d class='%s' caption='%s'", s.Rows, s.Columns, s.Class, s.Caption)
		if !styled {
			fmt.Fprintln(w, index, rest)
			continue
		}
		if s.Index == e.Selected {
			fmt.Fprintln(w, selectedStyle.Render(index), selectedStyle.Render(rest))
			continue
		}
		fmt.Fprintln(w, indexStyle.Render(index), rest)
	}
}

// printHeading writes a muted heading line, used to separate sources.
func printHeading(w io.Writer, text string) {
	if isTerminal(w) {
		text = mutedStyle.Render(text)
	}
	fmt.Fprintln(w, text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// ExtractionLoaded carries the result of extracting the browsed source.
type ExtractionLoaded struct {
	Extraction *domain.Extraction
	Err        error
}

// TableSelected is sent when a table is chosen for preview.
type TableSelected struct {
	Index int
}

// ExportRequested asks the app to write a table to disk.
type ExportRequested struct {
	Index  int
	Format domain.OutputFormat
}

// TableExported reports the outcome of an export.
type TableExported struct {
	Path string
	Err  error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewTables lists every table found in the source.
	ViewTables ViewType = iota
	// ViewPreview shows the cells of one table.
	ViewPreview
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewTables:
		return "tables"
	case ViewPreview:
		return "preview"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred is sent when an operation fails.
type ErrorOccurred struct {
	Err error
}

// Quit is sent to exit the application.
type Quit struct{}

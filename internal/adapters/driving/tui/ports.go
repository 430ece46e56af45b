// Package tui provides an interactive terminal user interface for browsing
// the tables of a document.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/htmltab/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Extract acquires the source and extracts its tables.
	Extract driving.ExtractService

	// Export writes tables to disk.
	Export driving.ExportService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(extract driving.ExtractService, export driving.ExportService) *Ports {
	return &Ports{
		Extract: extract,
		Export:  export,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Extract == nil {
		return ErrMissingExtractService
	}
	if p.Export == nil {
		return ErrMissingExportService
	}
	return nil
}

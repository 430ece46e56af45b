package mcp

import (
	"github.com/custodia-labs/htmltab/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Extract fetches pages and extracts their tables.
	Extract driving.ExtractService

	// Export renders tables in an output format.
	Export driving.ExportService

	// History serves saved extractions as resources. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Extract == nil {
		return ErrMissingExtractService
	}
	if p.Export == nil {
		return ErrMissingExportService
	}
	return nil
}

// Package mcp exposes table extraction to AI assistants over the Model
// Context Protocol.
package mcp

import "errors"

var (
	// ErrMissingExtractService is returned when the extract service is not provided.
	ErrMissingExtractService = errors.New("mcp: extract service is required")

	// ErrMissingExportService is returned when the export service is not provided.
	ErrMissingExportService = errors.New("mcp: export service is required")
)

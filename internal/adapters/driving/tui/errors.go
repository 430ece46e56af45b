package tui

import "errors"

// ErrMissingExtractService is returned when the extract service is not provided.
var ErrMissingExtractService = errors.New("tui: extract service is required")

// ErrMissingExportService is returned when the export service is not provided.
var ErrMissingExportService = errors.New("tui: export service is required")

// ErrMissingSource is returned when no source location is given.
var ErrMissingSource = errors.New("tui: source location is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// ExtractService acquires markup and extracts tables from it.
type ExtractService interface {
	// Extract fetches the location, extracts its tables and selects one
	// unless opts.SkipSelection is set. When the document has no tables the
	// extraction is returned together with domain.ErrNoTables.
	Extract(ctx context.Context, location string, opts domain.ExtractOptions) (*domain.Extraction, error)

	// ExtractMany extracts several locations concurrently. Results are
	// returned in the order of locations; per-location failures are
	// reported in each result rather than aborting the batch.
	ExtractMany(ctx context.Context, locations []string, opts domain.ExtractOptions) []ExtractResult

	// ExtractDocument runs extraction and selection over an already
	// acquired document.
	ExtractDocument(ctx context.Context, doc *domain.Document, opts domain.ExtractOptions) (*domain.Extraction, error)

	// Watch re-extracts a local file every time it changes until ctx is
	// cancelled. Both channels are closed on return.
	Watch(ctx context.Context, location string, opts domain.ExtractOptions) (<-chan *domain.Extraction, <-chan error, error)
}

// ExtractResult is the outcome of one location in a batch.
type ExtractResult struct {
	Location   string
	Extraction *domain.Extraction
	Err        error
}

// ExportService writes tables to files or streams.
type ExportService interface {
	// Formats returns the supported output formats.
	Formats() []domain.OutputFormat

	// Write serialises a table to w.
	Write(w io.Writer, table domain.Table, format domain.OutputFormat) error

	// WriteFile serialises a table to path, creating parent directories.
	WriteFile(path string, table domain.Table, format domain.OutputFormat) error

	// WriteAll writes every table of the extraction to dir as
	// <base>_table_<n>.<ext> with n starting at 1, and returns the paths written.
	WriteAll(e *domain.Extraction, dir string, format domain.OutputFormat) ([]string, error)
}

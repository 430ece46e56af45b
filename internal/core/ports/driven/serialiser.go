package driven

import (
	"io"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// Serialiser writes a table in one output format.
type Serialiser interface {
	// Format returns the output format this serialiser writes.
	Format() domain.OutputFormat

	// Write serialises the table to w.
	Write(w io.Writer, table domain.Table) error
}

// SerialiserRegistry selects the serialiser for an output format.
type SerialiserRegistry interface {
	// Get returns the serialiser for format.
	// Returns domain.ErrUnsupportedFormat if none is registered.
	Get(format domain.OutputFormat) (Serialiser, error)

	// Formats returns every registered format in registration order.
	Formats() []domain.OutputFormat
}

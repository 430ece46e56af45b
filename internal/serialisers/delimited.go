package serialisers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Serialiser = (*Delimited)(nil)

// Delimited writes RFC 4180 CSV or tab-separated values.
type Delimited struct {
	format domain.OutputFormat
	comma  rune
}

// NewCSV returns a comma-separated serialiser.
func NewCSV() *Delimited {
	return &Delimited{format: domain.FormatCSV, comma: ','}
}

// NewTSV returns a tab-separated serialiser.
// Tabs and newlines inside cells are replaced with spaces.
func NewTSV() *Delimited {
	return &Delimited{format: domain.FormatTSV, comma: '\t'}
}

// Format returns the output format.
func (d *Delimited) Format() domain.OutputFormat {
	return d.format
}

// Write writes one record per row.
func (d *Delimited) Write(w io.Writer, table domain.Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = d.comma

	for i, record := range table.Matrix() {
		if d.comma == '\t' {
			for j, field := range record {
				record[j] = tsvReplacer.Replace(field)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing %s row %d: %w", d.format, i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var tsvReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

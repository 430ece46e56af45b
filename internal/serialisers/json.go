package serialisers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Serialiser = (*JSON)(nil)

// JSONTable is the JSON representation of a table.
type JSONTable struct {
	Caption    string            `json:"caption"`
	Attributes map[string]string `json:"attributes"`
	Rows       [][]string        `json:"rows"`
}

// NewJSONTable converts a table to its JSON representation.
// Attributes and rows are never null.
func NewJSONTable(table domain.Table) JSONTable {
	attrs := table.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return JSONTable{
		Caption:    table.Caption,
		Attributes: attrs,
		Rows:       table.Matrix(),
	}
}

// JSON writes a table as an indented JSON object.
type JSON struct {
	indent string
}

// NewJSON returns a JSON serialiser. An empty indent writes compact JSON.
func NewJSON(indent string) *JSON {
	return &JSON{indent: indent}
}

// Format returns the output format.
func (j *JSON) Format() domain.OutputFormat {
	return domain.FormatJSON
}

// Write encodes the table followed by a newline.
func (j *JSON) Write(w io.Writer, table domain.Table) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if j.indent != "" {
		encoder.SetIndent("", j.indent)
	}
	if err := encoder.Encode(NewJSONTable(table)); err != nil {
		return fmt.Errorf("encoding table: %w", err)
	}
	return nil
}

package serialisers

import (
	"bufio"
	"io"
	"strings"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Serialiser = (*Markdown)(nil)

// Markdown writes a pipe table. The first row is the header row.
type Markdown struct{}

// NewMarkdown returns a Markdown serialiser.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Format returns the output format.
func (m *Markdown) Format() domain.OutputFormat {
	return domain.FormatMarkdown
}

// Write writes the table. A caption, when present, is written as a
// paragraph above it.
func (m *Markdown) Write(w io.Writer, table domain.Table) error {
	matrix := table.Matrix()
	if len(matrix) == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)
	if table.Caption != "" {
		bw.WriteString(markdownEscaper.Replace(table.Caption))
		bw.WriteString("\n\n")
	}

	writeMarkdownRow(bw, matrix[0])

	// Separator
	for range matrix[0] {
		bw.WriteString("|---")
	}
	bw.WriteString("|\n")

	for _, row := range matrix[1:] {
		writeMarkdownRow(bw, row)
	}
	return bw.Flush()
}

func writeMarkdownRow(bw *bufio.Writer, row []string) {
	for _, text := range row {
		bw.WriteString("| ")
		bw.WriteString(markdownEscaper.Replace(text))
		bw.WriteString(" ")
	}
	bw.WriteString("|\n")
}

// markdownEscaper keeps cell text from breaking the table structure.
var markdownEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

package domain

import "strings"

// CellKind distinguishes header cells from data cells.
type CellKind int

// Cell kinds.
const (
	// CellData is a <td> cell or a padding cell.
	CellData CellKind = iota

	// CellHeader is a <th> cell.
	CellHeader
)

// String returns the string representation.
func (k CellKind) String() string {
	switch k {
	case CellHeader:
		return "header"
	default:
		return "data"
	}
}

// Cell is a single normalised table cell.
type Cell struct {
	Kind CellKind
	Text string
}

// IsHeader returns true for <th> cells.
func (c Cell) IsHeader() bool {
	return c.Kind == CellHeader
}

// Row is an ordered sequence of cells. Emitted rows always have at least one cell.
type Row []Cell

// Texts returns the text of every cell in order.
func (r Row) Texts() []string {
	texts := make([]string, len(r))
	for i, c := range r {
		texts[i] = c.Text
	}
	return texts
}

// HeaderCount returns the number of <th> cells in the row.
func (r Row) HeaderCount() int {
	n := 0
	for _, c := range r {
		if c.IsHeader() {
			n++
		}
	}
	return n
}

// Table is a table extracted from markup.
// Emitted tables always have at least one row.
type Table struct {
	// Attributes holds the <table> start tag attributes, keys lower-cased.
	Attributes map[string]string

	// Caption is the normalised <caption> text, if any.
	Caption string

	// Rows holds the rows in document order.
	Rows []Row
}

// Attr returns the value of a table attribute, or empty string.
func (t Table) Attr(name string) string {
	if t.Attributes == nil {
		return ""
	}
	return t.Attributes[strings.ToLower(name)]
}

// Class returns the table's class attribute.
func (t Table) Class() string {
	return t.Attr("class")
}

// ID returns the table's id attribute.
func (t Table) ID() string {
	return t.Attr("id")
}

// Classes returns the individual class names of the table.
func (t Table) Classes() []string {
	return strings.Fields(t.Class())
}

// Width returns the maximum number of cells in any row.
func (t Table) Width() int {
	width := 0
	for _, r := range t.Rows {
		if len(r) > width {
			width = len(r)
		}
	}
	return width
}

// Matrix returns the cell texts as a rectangular grid.
// Short rows are padded with empty strings to Width.
func (t Table) Matrix() [][]string {
	width := t.Width()
	matrix := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		line := make([]string, width)
		for j, c := range r {
			line[j] = c.Text
		}
		matrix[i] = line
	}
	return matrix
}

// HasHeaderRow reports whether the first row is a header row.
// A first row counts as a header row when at least half of its cells are <th>.
func (t Table) HasHeaderRow() bool {
	if len(t.Rows) == 0 {
		return false
	}
	first := t.Rows[0]
	threshold := len(first) / 2
	if threshold < 1 {
		threshold = 1
	}
	return first.HeaderCount() >= threshold
}

// HeaderTexts returns the first row's texts if it is a header row, else nil.
func (t Table) HeaderTexts() []string {
	if !t.HasHeaderRow() {
		return nil
	}
	return t.Rows[0].Texts()
}

// Summary returns the list-mode description of the table at index.
func (t Table) Summary(index int) TableSummary {
	return TableSummary{
		Index:   index,
		Caption: t.Caption,
		Rows:    len(t.Rows),
		Columns: t.Width(),
		Class:   t.Class(),
	}
}

// TableSummary describes a table without its contents.
type TableSummary struct {
	Index   int    `json:"index"`
	Caption string `json:"caption"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Class   string `json:"class,omitempty"`
}

// Summarise returns a summary for every table in document order.
func Summarise(tables []Table) []TableSummary {
	summaries := make([]TableSummary, len(tables))
	for i := range tables {
		summaries[i] = tables[i].Summary(i)
	}
	return summaries
}

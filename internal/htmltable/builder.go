package htmltable

import (
	"strings"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// attrColspan is the cell attribute that repeats a cell across columns.
const attrColspan = "colspan"

// maxColspan caps a single cell's span, as browsers do.
const maxColspan = 1000

// maxSpannedWidth bounds how wide spanning may grow a row, so a run of
// hostile colspan values cannot exhaust memory. Cells themselves are never dropped.
const maxSpannedWidth = 4 * maxColspan

// frameKind identifies an open structural element on the builder stack.
type frameKind int

const (
	frameTable frameKind = iota
	frameRow
	frameCell
	frameCaption
)

// frame is one open element. Each frame owns its own accumulator, so text
// can never leak from one cell into the next.
type frame struct {
	kind frameKind

	// frameTable
	table *openTable

	// frameRow
	row domain.Row

	// frameCell
	cellKind domain.CellKind
	span     int

	// frameCell and frameCaption
	text strings.Builder
}

// openTable collects a table until its end tag.
type openTable struct {
	attrs   map[string]string
	caption string
	rows    []domain.Row
	slot    int
}

// Builder assembles tables from a token stream using an explicit stack of
// open frames. It tolerates malformed markup: stray end tags are ignored,
// missing end tags are implied, and Finish closes whatever is still open.
type Builder struct {
	stack []*frame

	// slots holds finished tables in the order their start tags appeared.
	// Empty tables leave a nil slot.
	slots []*domain.Table

	normalise func(string) string
}

// NewBuilder returns a builder that normalises cell and caption text with normalise.
func NewBuilder(normalise func(string) string) *Builder {
	if normalise == nil {
		normalise = NormaliseText
	}
	return &Builder{normalise: normalise}
}

// Push feeds one token to the builder.
func (b *Builder) Push(tok Token) {
	switch tok.Kind {
	case TokenStartTag:
		b.startTag(tok)
	case TokenEndTag:
		b.endTag(tok)
	case TokenText:
		if !tok.Raw {
			b.appendText(tok.Text)
		}
	case TokenEntityRef, TokenCharRef:
		b.appendText(entityText(tok))
	}
}

// Finish force-closes every open frame and returns the non-empty tables in
// document order. The builder must not be used afterwards.
func (b *Builder) Finish() []domain.Table {
	for len(b.stack) > 0 {
		b.closeTop()
	}

	tables := make([]domain.Table, 0, len(b.slots))
	for _, t := range b.slots {
		if t != nil {
			tables = append(tables, *t)
		}
	}
	b.slots = nil
	return tables
}

func (b *Builder) startTag(tok Token) {
	switch tok.Tag {
	case TagTable:
		// A nested table separates the words of the enclosing cell.
		b.appendText(" ")
		b.slots = append(b.slots, nil)
		b.push(&frame{kind: frameTable, table: &openTable{
			attrs: cloneAttrs(tok.Attrs),
			slot:  len(b.slots) - 1,
		}})

	case TagRow:
		if !b.unwindToTable() {
			return
		}
		b.push(&frame{kind: frameRow})

	case TagCell, TagHeaderCell:
		if b.innermostTable() < 0 {
			return
		}
		for top := b.top(); top != nil && (top.kind == frameCell || top.kind == frameCaption); top = b.top() {
			b.closeTop()
		}
		if b.top().kind == frameTable {
			b.push(&frame{kind: frameRow})
		}
		kind := domain.CellData
		if tok.Tag == TagHeaderCell {
			kind = domain.CellHeader
		}
		b.push(&frame{kind: frameCell, cellKind: kind, span: parseSpan(tok.Attrs[attrColspan])})

	case TagCaption:
		if top := b.top(); top != nil && top.kind == frameTable {
			b.push(&frame{kind: frameCaption})
		}

	case TagLineBreak, TagBlock:
		b.appendText(" ")
	}
}

func (b *Builder) endTag(tok Token) {
	switch tok.Tag {
	case TagCell, TagHeaderCell:
		if top := b.top(); top != nil && top.kind == frameCell {
			b.closeTop()
		}

	case TagRow:
		if top := b.top(); top != nil && top.kind == frameCell {
			b.closeTop()
		}
		if top := b.top(); top != nil && top.kind == frameRow {
			b.closeTop()
		}

	case TagCaption:
		if top := b.top(); top != nil && top.kind == frameCaption {
			b.closeTop()
		}

	case TagTable:
		idx := b.innermostTable()
		if idx < 0 {
			return
		}
		for len(b.stack) > idx {
			b.closeTop()
		}
		b.appendText(" ")

	case TagBlock:
		b.appendText(" ")
	}
}

// appendText adds text to the innermost accumulator when it is a cell or
// caption. Text anywhere else, such as whitespace between <tr> and <td>,
// is discarded.
func (b *Builder) appendText(s string) {
	top := b.top()
	if top == nil || (top.kind != frameCell && top.kind != frameCaption) {
		return
	}
	top.text.WriteString(s)
}

// unwindToTable closes rows, cells and captions above the innermost table.
// It reports false when no table is open.
func (b *Builder) unwindToTable() bool {
	idx := b.innermostTable()
	if idx < 0 {
		return false
	}
	for len(b.stack) > idx+1 {
		b.closeTop()
	}
	return true
}

// innermostTable returns the stack index of the innermost open table, or -1.
func (b *Builder) innermostTable() int {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].kind == frameTable {
			return i
		}
	}
	return -1
}

func (b *Builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) push(f *frame) {
	b.stack = append(b.stack, f)
}

// closeTop pops the top frame and moves its content into its parent.
// Empty rows and tables are dropped here.
func (b *Builder) closeTop() {
	f := b.stack[len(b.stack)-1]
	b.stack[len(b.stack)-1] = nil
	b.stack = b.stack[:len(b.stack)-1]
	parent := b.top()

	switch f.kind {
	case frameCell:
		if parent != nil && parent.kind == frameRow {
			cell := domain.Cell{Kind: f.cellKind, Text: b.normalise(f.text.String())}
			parent.row = append(parent.row, cell)
			for n := 1; n < f.span && len(parent.row) < maxSpannedWidth; n++ {
				parent.row = append(parent.row, cell)
			}
		}

	case frameRow:
		if len(f.row) > 0 && parent != nil && parent.kind == frameTable {
			parent.table.rows = append(parent.table.rows, f.row)
		}

	case frameCaption:
		if parent != nil && parent.kind == frameTable {
			parent.table.caption = b.normalise(f.text.String())
		}

	case frameTable:
		t := f.table
		if len(t.rows) == 0 {
			return
		}
		b.slots[t.slot] = &domain.Table{
			Attributes: t.attrs,
			Caption:    t.caption,
			Rows:       Pad(t.rows),
		}
	}
}

// parseSpan reads a colspan value the way browsers do: leading digits after
// optional whitespace, anything else counts as 1.
func parseSpan(v string) int {
	v = strings.TrimLeft(v, " \t\n\r\f")
	span := 0
	for i := 0; i < len(v) && v[i] >= '0' && v[i] <= '9'; i++ {
		span = span*10 + int(v[i]-'0')
		if span > maxColspan {
			return maxColspan
		}
	}
	if span < 1 {
		return 1
	}
	return span
}

// cloneAttrs copies attributes so the result owns every string.
func cloneAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[strings.Clone(k)] = strings.Clone(v)
	}
	return out
}

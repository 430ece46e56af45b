package htmltable

import (
	"fmt"

	"golang.org/x/net/html/atom"
)

// TokenKind identifies the kind of a Token.
type TokenKind int

// Token kinds.
const (
	// TokenText is a run of character data.
	TokenText TokenKind = iota

	// TokenStartTag is an opening tag such as <td class="x">.
	TokenStartTag

	// TokenEndTag is a closing tag such as </td>.
	TokenEndTag

	// TokenEntityRef is a named character reference such as &amp;.
	TokenEntityRef

	// TokenCharRef is a numeric character reference such as &#160; or &#xA0;.
	TokenCharRef
)

// String returns the string representation.
func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "Text"
	case TokenStartTag:
		return "StartTag"
	case TokenEndTag:
		return "EndTag"
	case TokenEntityRef:
		return "EntityRef"
	case TokenCharRef:
		return "CharRef"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// TagKind is the closed set of tags the table builder reacts to.
// Tag names are mapped once, at the tokenizer boundary.
type TagKind int

// Tag kinds.
const (
	// TagOther is any tag the builder ignores.
	TagOther TagKind = iota

	// TagTable is <table>.
	TagTable

	// TagRow is <tr>.
	TagRow

	// TagCell is <td>.
	TagCell

	// TagHeaderCell is <th>.
	TagHeaderCell

	// TagCaption is <caption>.
	TagCaption

	// TagLineBreak is <br>.
	TagLineBreak

	// TagBlock is a block-level element whose boundaries separate words.
	TagBlock

	// TagScript is <script>; its content is opaque.
	TagScript

	// TagStyle is <style>; its content is opaque.
	TagStyle
)

// String returns the string representation.
func (k TagKind) String() string {
	switch k {
	case TagTable:
		return "table"
	case TagRow:
		return "row"
	case TagCell:
		return "cell"
	case TagHeaderCell:
		return "header-cell"
	case TagCaption:
		return "caption"
	case TagLineBreak:
		return "line-break"
	case TagBlock:
		return "block"
	case TagScript:
		return "script"
	case TagStyle:
		return "style"
	default:
		return "other"
	}
}

// IsCell reports whether the tag opens a table cell.
func (k TagKind) IsCell() bool {
	return k == TagCell || k == TagHeaderCell
}

// isRawText reports whether the element's content is opaque text.
func (k TagKind) isRawText() bool {
	return k == TagScript || k == TagStyle
}

// LookupTag maps a lower-case tag name to its TagKind.
func LookupTag(name string) TagKind {
	switch atom.Lookup([]byte(name)) {
	case atom.Table:
		return TagTable
	case atom.Tr:
		return TagRow
	case atom.Td:
		return TagCell
	case atom.Th:
		return TagHeaderCell
	case atom.Caption:
		return TagCaption
	case atom.Br:
		return TagLineBreak
	case atom.Script:
		return TagScript
	case atom.Style:
		return TagStyle
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Dd, atom.Dt, atom.Hr,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre:
		return TagBlock
	default:
		return TagOther
	}
}

// Token is a single lexical unit of markup. Tokens are values and hold no
// references into the tokenizer's state.
type Token struct {
	// Kind is the token kind.
	Kind TokenKind

	// Tag is the mapped tag kind for start and end tags.
	Tag TagKind

	// Name is the lower-case tag name, or the entity name for TokenEntityRef.
	Name string

	// Attrs holds parsed attributes for start tags when attribute parsing
	// was requested for the tag. Keys are lower-case; values are decoded.
	Attrs map[string]string

	// Text is the character data for TokenText.
	Text string

	// Codepoint is the referenced code point for TokenCharRef.
	Codepoint int

	// Raw marks text inside <script> or <style>.
	Raw bool

	// SelfClosing marks start tags written as <br/>.
	SelfClosing bool
}

// String returns a debugging representation of the token.
func (t Token) String() string {
	switch t.Kind {
	case TokenStartTag:
		return fmt.Sprintf("<%s>", t.Name)
	case TokenEndTag:
		return fmt.Sprintf("</%s>", t.Name)
	case TokenEntityRef:
		return fmt.Sprintf("&%s;", t.Name)
	case TokenCharRef:
		return fmt.Sprintf("&#%d;", t.Codepoint)
	default:
		return fmt.Sprintf("%q", t.Text)
	}
}

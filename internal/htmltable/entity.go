package htmltable

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// replacementChar is substituted for invalid numeric references.
const replacementChar = "\uFFFD"

// maxCodepoint is the largest Unicode code point.
const maxCodepoint = 0x10FFFF

// commonEntities short-circuits the references that dominate real tables.
var commonEntities = map[string]string{
	"nbsp": "\u00a0",
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// DecodeEntity resolves a named character reference such as "amp" or "eacute".
// It reports false for unknown names; callers keep those verbatim as "&name;".
func DecodeEntity(name string) (string, bool) {
	if s, ok := commonEntities[name]; ok {
		return s, true
	}
	if name == "" {
		return "", false
	}

	ref := "&" + name + ";"
	decoded := html.UnescapeString(ref)
	// UnescapeString falls back to the longest known prefix ("&notit;" -> "¬it;").
	// Every full entity decodes to at most two code points, a prefix match to at least three.
	if decoded == ref || utf8.RuneCountInString(decoded) > 2 {
		return "", false
	}
	return decoded, true
}

// DecodeCharRef resolves a numeric character reference.
// Invalid code points (NUL, surrogates, beyond U+10FFFF) become U+FFFD.
func DecodeCharRef(codepoint int) string {
	if codepoint <= 0 || codepoint > maxCodepoint || (codepoint >= 0xD800 && codepoint <= 0xDFFF) {
		return replacementChar
	}
	// Delegate valid values so the windows-1252 remapping of 0x80-0x9F applies.
	return html.UnescapeString("&#" + strconv.Itoa(codepoint) + ";")
}

// entityText returns the text a reference token contributes to a cell.
func entityText(tok Token) string {
	switch tok.Kind {
	case TokenEntityRef:
		if s, ok := DecodeEntity(tok.Name); ok {
			return s
		}
		return "&" + tok.Name + ";"
	case TokenCharRef:
		return DecodeCharRef(tok.Codepoint)
	default:
		return tok.Text
	}
}

// Unescape decodes every character reference in s with the same rules the
// tokenizer applies to text. Unknown named references are kept verbatim.
func Unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, tok := range splitText(s, nil) {
		b.WriteString(entityText(tok))
	}
	return b.String()
}

// parseReference parses a character reference at the start of s, which begins with '&'.
// A named reference ends at ';', or without it when a prefix of the name is a
// legacy entity such as "&copy" or "&nbsp". It returns the reference token and
// its length, or false when s does not start with a reference.
func parseReference(s string) (Token, int, bool) {
	if len(s) < 3 || s[0] != '&' {
		return Token{}, 0, false
	}

	if s[1] == '#' {
		return parseNumericReference(s)
	}

	i := 1
	for i < len(s) && isAlnum(s[i]) {
		i++
	}
	if i == 1 || !isLetter(s[1]) {
		return Token{}, 0, false
	}
	if i < len(s) && s[i] == ';' {
		return Token{Kind: TokenEntityRef, Name: s[1:i]}, i + 1, true
	}

	n := legacyPrefix(s[1:i])
	if n == 0 {
		return Token{}, 0, false
	}
	return Token{Kind: TokenEntityRef, Name: s[1 : 1+n]}, 1 + n, true
}

// longestLegacyEntity is the length of the longest entity name that decodes
// without a terminating ';' ("middot", "frac12", ...).
const longestLegacyEntity = 6

// legacyPrefix returns the length of the longest prefix of name that is a
// legacy entity, or 0. "copyright" yields 4 for "copy".
func legacyPrefix(name string) int {
	for j := min(len(name), longestLegacyEntity); j > 1; j-- {
		ref := "&" + name[:j]
		// A shorter legacy prefix also decodes, leaving trailing letters behind.
		if decoded := html.UnescapeString(ref); decoded != ref && utf8.RuneCountInString(decoded) == 1 {
			return j
		}
	}
	return 0
}

// parseNumericReference parses "&#123;" or "&#x7B;". The ';' is optional.
func parseNumericReference(s string) (Token, int, bool) {
	i := 2
	base := 10
	if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
		base = 16
		i++
	}
	start := i
	for i < len(s) && isDigitIn(s[i], base) {
		i++
	}
	if i == start {
		return Token{}, 0, false
	}

	codepoint := maxCodepoint + 1
	if v, err := strconv.ParseInt(s[start:i], base, 32); err == nil {
		codepoint = int(v)
	}
	n := i
	if i < len(s) && s[i] == ';' {
		n++
	}
	return Token{Kind: TokenCharRef, Codepoint: codepoint}, n, true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9')
}

func isDigitIn(c byte, base int) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	if base == 16 {
		return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	}
	return false
}

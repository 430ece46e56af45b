package htmltable

import (
	"iter"
	"strings"
)

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithAllAttributes parses attributes of every start tag.
// By default only <table> attributes are parsed; other tags skip theirs.
func WithAllAttributes() TokenizerOption {
	return func(z *Tokenizer) {
		z.allAttrs = true
	}
}

// Tokenizer splits markup into tokens in a single forward pass.
// It is a pull producer: callers may stop calling Next at any token boundary.
// A Tokenizer is not safe for concurrent use; independent inputs need
// independent tokenizers.
type Tokenizer struct {
	src      string
	pos      int
	queue    []Token
	head     int
	rawTag   string
	done     bool
	allAttrs bool
}

// NewTokenizer returns a tokenizer over src.
func NewTokenizer(src string, opts ...TokenizerOption) *Tokenizer {
	z := &Tokenizer{src: src}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// Tokenize returns a lazy sequence of the tokens in src.
// Breaking out of the range loop stops tokenization.
func Tokenize(src string, opts ...TokenizerOption) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		z := NewTokenizer(src, opts...)
		for {
			tok, ok := z.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// Next returns the next token. It returns false once the input is exhausted,
// or at the first unterminated tag, comment or declaration: everything after
// it is treated as a truncated download and ignored.
func (z *Tokenizer) Next() (Token, bool) {
	for z.head >= len(z.queue) {
		if z.done {
			return Token{}, false
		}
		z.queue = z.queue[:0]
		z.head = 0
		z.scan()
	}
	tok := z.queue[z.head]
	z.head++
	return tok, true
}

// Offset returns the number of input bytes consumed so far.
func (z *Tokenizer) Offset() int {
	return z.pos
}

// scan consumes the next markup construct and queues zero or more tokens.
func (z *Tokenizer) scan() {
	if z.rawTag != "" {
		z.scanRawText()
		return
	}
	if z.pos >= len(z.src) {
		z.done = true
		return
	}

	rest := z.src[z.pos:]
	lt := strings.IndexByte(rest, '<')
	switch {
	case lt < 0:
		z.queue = splitText(rest, z.queue)
		z.pos = len(z.src)
		return
	case lt > 0:
		z.queue = splitText(rest[:lt], z.queue)
		z.pos += lt
		return
	}

	if len(rest) < 2 {
		// A lone '<' at the end of input.
		z.pos = len(z.src)
		z.done = true
		return
	}

	switch c := rest[1]; {
	case c == '!':
		z.skipDeclaration(rest)
	case c == '?':
		z.skipUntil(rest, ">")
	case c == '/':
		z.scanEndTag(rest)
	case isLetter(c):
		z.scanStartTag(rest)
	default:
		// Not a tag: '<' is literal text up to the next '<'.
		next := strings.IndexByte(rest[1:], '<')
		if next < 0 {
			next = len(rest) - 1
		}
		z.queue = splitText(rest[:next+1], z.queue)
		z.pos += next + 1
	}
}

// skipDeclaration skips <!-- comments -->, <!DOCTYPE ...> and <![CDATA[...]]>.
func (z *Tokenizer) skipDeclaration(rest string) {
	switch {
	case strings.HasPrefix(rest, "<!--"):
		end := strings.Index(rest[4:], "-->")
		if end < 0 {
			z.truncate()
			return
		}
		z.pos += 4 + end + 3
	case strings.HasPrefix(rest, "<![CDATA["):
		end := strings.Index(rest, "]]>")
		if end < 0 {
			z.truncate()
			return
		}
		z.queue = splitText(rest[len("<![CDATA["):end], z.queue)
		z.pos += end + 3
	default:
		z.skipUntil(rest, ">")
	}
}

// skipUntil advances past the first occurrence of marker, or truncates.
func (z *Tokenizer) skipUntil(rest, marker string) {
	end := strings.Index(rest, marker)
	if end < 0 {
		z.truncate()
		return
	}
	z.pos += end + len(marker)
}

// scanEndTag tokenizes "</name ...>".
func (z *Tokenizer) scanEndTag(rest string) {
	if len(rest) < 3 {
		z.truncate()
		return
	}
	if !isLetter(rest[2]) {
		// "</>" is dropped; "</3" and friends are bogus comments.
		z.skipUntil(rest, ">")
		return
	}

	nameEnd := 2
	for nameEnd < len(rest) && !isTagNameEnd(rest[nameEnd]) {
		nameEnd++
	}
	end := strings.IndexByte(rest[nameEnd:], '>')
	if end < 0 {
		z.truncate()
		return
	}

	name := strings.ToLower(rest[2:nameEnd])
	z.queue = append(z.queue, Token{Kind: TokenEndTag, Tag: LookupTag(name), Name: name})
	z.pos += nameEnd + end + 1
}

// scanStartTag tokenizes "<name attr=value ...>".
func (z *Tokenizer) scanStartTag(rest string) {
	nameEnd := 1
	for nameEnd < len(rest) && !isTagNameEnd(rest[nameEnd]) {
		nameEnd++
	}
	name := strings.ToLower(rest[1:nameEnd])
	kind := LookupTag(name)

	attrs, end, ok := scanAttributes(rest, nameEnd, z.attrFilter(kind))
	if !ok {
		z.truncate()
		return
	}

	tok := Token{
		Kind:        TokenStartTag,
		Tag:         kind,
		Name:        name,
		Attrs:       attrs,
		SelfClosing: end > 0 && rest[end-1] == '/',
	}
	z.queue = append(z.queue, tok)
	z.pos += end + 1

	// Browsers ignore "/>" on script and style; the body is raw text regardless.
	if kind.isRawText() {
		z.rawTag = name
	}
}

// attrFilter selects the attributes kept for a start tag of the given kind:
// all of them for tables, only colspan for cells, none otherwise.
func (z *Tokenizer) attrFilter(kind TagKind) func(key string) bool {
	switch {
	case z.allAttrs || kind == TagTable:
		return func(string) bool { return true }
	case kind.IsCell():
		return func(key string) bool { return key == attrColspan }
	default:
		return nil
	}
}

// scanRawText emits <script>/<style> content as one opaque text token.
func (z *Tokenizer) scanRawText() {
	rest := z.src[z.pos:]
	end := indexEndTag(rest, z.rawTag)
	z.rawTag = ""
	if end < 0 {
		end = len(rest)
	}
	if end > 0 {
		z.queue = append(z.queue, Token{Kind: TokenText, Text: rest[:end], Raw: true})
	}
	z.pos += end
}

// truncate stops tokenization at an unterminated construct.
func (z *Tokenizer) truncate() {
	z.pos = len(z.src)
	z.done = true
}

// scanAttributes walks the attributes of a start tag beginning at s[i] and
// returns the index of the closing '>'. Quoted values may contain '>'.
// Only attributes accepted by keep are collected; a nil keep skips them all.
// The first occurrence of a duplicated attribute wins.
func scanAttributes(s string, i int, keep func(key string) bool) (map[string]string, int, bool) {
	var attrs map[string]string
	for {
		for i < len(s) && (isSpace(s[i]) || s[i] == '/') {
			i++
		}
		if i >= len(s) {
			return nil, 0, false
		}
		if s[i] == '>' {
			return attrs, i, true
		}

		start := i
		i++ // an attribute name always has at least one character, even '='
		for i < len(s) && !isSpace(s[i]) && s[i] != '/' && s[i] != '>' && s[i] != '=' {
			i++
		}
		name := s[start:i]

		for i < len(s) && isSpace(s[i]) {
			i++
		}

		var value string
		if i < len(s) && s[i] == '=' {
			i++
			for i < len(s) && isSpace(s[i]) {
				i++
			}
			if i >= len(s) {
				return nil, 0, false
			}
			if q := s[i]; q == '"' || q == '\'' {
				end := strings.IndexByte(s[i+1:], q)
				if end < 0 {
					return nil, 0, false
				}
				value = s[i+1 : i+1+end]
				i += end + 2
			} else {
				vstart := i
				for i < len(s) && !isSpace(s[i]) && s[i] != '>' {
					i++
				}
				value = s[vstart:i]
			}
		}

		if keep == nil {
			continue
		}
		key := strings.ToLower(name)
		if !keep(key) {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		if _, seen := attrs[key]; !seen {
			attrs[key] = Unescape(value)
		}
	}
}

// splitText appends the tokens for a run of character data: plain text
// interleaved with entity and numeric references. Ampersands that do not
// start a well-formed reference stay in the text.
func splitText(s string, dst []Token) []Token {
	start := 0
	for i := 0; i < len(s); {
		amp := strings.IndexByte(s[i:], '&')
		if amp < 0 {
			break
		}
		i += amp
		ref, n, ok := parseReference(s[i:])
		if !ok {
			i++
			continue
		}
		if i > start {
			dst = append(dst, Token{Kind: TokenText, Text: s[start:i]})
		}
		dst = append(dst, ref)
		i += n
		start = i
	}
	if start < len(s) {
		dst = append(dst, Token{Kind: TokenText, Text: s[start:]})
	}
	return dst
}

// indexEndTag finds "</name" followed by a tag-name terminator, ignoring case.
func indexEndTag(s, name string) int {
	for i := 0; i < len(s); {
		lt := strings.Index(s[i:], "</")
		if lt < 0 {
			return -1
		}
		i += lt
		end := i + 2 + len(name)
		if end <= len(s) && strings.EqualFold(s[i+2:end], name) &&
			(end == len(s) || isTagNameEnd(s[end])) {
			return i
		}
		i += 2
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isTagNameEnd(c byte) bool {
	return isSpace(c) || c == '>' || c == '/'
}

// Package textdecode converts raw document bytes to UTF-8 text.
//
// The encoding is chosen in this order: the charset parameter of the
// Content-Type header, a byte order mark, a <meta> declaration in the
// first kilobyte, and finally UTF-8. Bytes that are invalid in the chosen
// encoding are replaced with U+FFFD rather than failing the fetch.
package textdecode

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// DefaultCharset is used when nothing declares an encoding.
const DefaultCharset = "utf-8"

// sniffLimit bounds how much of the document is searched for <meta>.
const sniffLimit = 1024

// Result is decoded text and the encoding that produced it.
type Result struct {
	Text    string
	Charset string
}

// Decode converts raw to text. contentType is the Content-Type reported by
// the source and may be empty.
func Decode(raw []byte, contentType string) (Result, error) {
	enc, name := Detect(raw, contentType)

	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", domain.ErrDecodeFailed, name, err)
	}
	return Result{
		Text:    strings.TrimPrefix(string(out), "\uFEFF"),
		Charset: name,
	}, nil
}

// Detect picks the encoding for raw and returns it with its canonical name.
func Detect(raw []byte, contentType string) (encoding.Encoding, string) {
	if label := headerCharset(contentType); label != "" {
		if enc, name, ok := lookup(label); ok {
			return enc, name
		}
	}

	// Without a content type DetermineEncoding is only certain about a BOM.
	if enc, name, certain := charset.DetermineEncoding(raw, ""); certain {
		return enc, name
	}

	if label := metaCharset(raw); label != "" {
		if enc, name, ok := lookup(label); ok {
			return enc, name
		}
	}

	enc, _ := htmlindex.Get(DefaultCharset)
	return enc, DefaultCharset
}

// lookup resolves a charset label using the WHATWG encoding index.
func lookup(label string) (encoding.Encoding, string, bool) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, "", false
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = strings.ToLower(strings.TrimSpace(label))
	}
	return enc, name, true
}

// headerCharset returns the charset parameter of a Content-Type value.
func headerCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// metaCharset scans the start of the document for <meta charset="..."> or
// <meta http-equiv="Content-Type" content="...; charset=...">.
func metaCharset(raw []byte) string {
	if len(raw) > sniffLimit {
		raw = raw[:sniffLimit]
	}
	z := html.NewTokenizer(bytes.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}
			var httpEquiv bool
			var content string
			for {
				key, val, more := z.TagAttr()
				switch string(key) {
				case "charset":
					return string(val)
				case "http-equiv":
					httpEquiv = strings.EqualFold(string(val), "content-type")
				case "content":
					content = string(val)
				}
				if !more {
					break
				}
			}
			if httpEquiv {
				if label := headerCharset(content); label != "" {
					return label
				}
			}
		}
	}
}

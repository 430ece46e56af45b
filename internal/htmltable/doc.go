// Package htmltable extracts tables from HTML markup.
//
// Extraction runs in three stages over a single linear pass:
//
//   - Tokenizer: splits markup into start tags, end tags, text and
//     character references. Malformed tags are tolerated and an
//     unterminated tag ends the input. <script> and <style> content is
//     opaque text.
//   - Builder: assembles tables, rows and cells with an explicit stack of
//     open frames, so nested tables and missing end tags are handled.
//     A cell with colspan is repeated across the columns it spans.
//   - Normaliser: collapses whitespace, strips footnote markers such as
//     [12], and pads rows so every table is rectangular.
//
// The package performs no I/O and holds no shared state; independent
// documents may be extracted concurrently.
package htmltable

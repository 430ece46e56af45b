package htmltable

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// footnoteMarker matches bracketed integers such as [1] or [ 23 ].
var footnoteMarker = regexp.MustCompile(`\[\s*\d+\s*\]`)

// NormaliseText collapses every run of Unicode whitespace, including
// non-breaking spaces, to a single space and trims both ends.
// NormaliseText(NormaliseText(s)) == NormaliseText(s).
func NormaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripFootnotes removes bracketed footnote markers and normalises the result.
// Numbers without brackets are left alone.
func StripFootnotes(s string) string {
	for footnoteMarker.MatchString(s) {
		s = footnoteMarker.ReplaceAllString(s, "")
	}
	return NormaliseText(s)
}

// Pad extends every row to the width of the widest row with empty data cells.
// Rows are modified in place and returned.
func Pad(rows []domain.Row) []domain.Row {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, domain.Cell{Kind: domain.CellData})
		}
		rows[i] = r
	}
	return rows
}

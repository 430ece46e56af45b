// Package serialisers writes extracted tables in the supported output
// formats: CSV, TSV, JSON and Markdown.
//
// Every serialiser writes the table's rectangular matrix, so short rows
// come out padded with empty cells.
package serialisers

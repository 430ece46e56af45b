package domain

import (
	"fmt"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// OutputFormat identifies a table serialisation format.
type OutputFormat string

// Available output formats.
const (
	// FormatCSV is comma-separated values (RFC 4180).
	FormatCSV OutputFormat = "csv"

	// FormatTSV is tab-separated values.
	FormatTSV OutputFormat = "tsv"

	// FormatJSON is a JSON object with caption, attributes and rows.
	FormatJSON OutputFormat = "json"

	// FormatMarkdown is a pipe table.
	FormatMarkdown OutputFormat = "markdown"
)

// IsValid returns true if the format is recognised.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatCSV, FormatTSV, FormatJSON, FormatMarkdown:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f OutputFormat) String() string {
	return string(f)
}

// Extension returns the file extension for the format, without a dot.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	default:
		return string(f)
	}
}

// Description returns a human-readable description of the format.
func (f OutputFormat) Description() string {
	switch f {
	case FormatCSV:
		return "CSV (comma-separated values)"
	case FormatTSV:
		return "TSV (tab-separated values)"
	case FormatJSON:
		return "JSON (caption, attributes and rows)"
	case FormatMarkdown:
		return "Markdown (pipe table)"
	default:
		return unknownDescription
	}
}

// ParseOutputFormat parses a format name, case-insensitively.
// "md" is accepted for markdown.
func ParseOutputFormat(name string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(name)))
	if f == "md" {
		f = FormatMarkdown
	}
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q (use csv, tsv, json or markdown)", ErrUnsupportedFormat, name)
	}
	return f, nil
}

// AllOutputFormats returns all available output formats.
func AllOutputFormats() []OutputFormat {
	return []OutputFormat{FormatCSV, FormatTSV, FormatJSON, FormatMarkdown}
}

// DefaultUserAgent identifies htmltab to web servers.
// Many sites reject requests without a User-Agent.
const DefaultUserAgent = "htmltab/1.0 (+https://github.com/custodia-labs/htmltab)"

// FetchSettings configures input acquisition.
type FetchSettings struct {
	// UserAgent is sent with every network request.
	UserAgent string

	// Timeout bounds a single network request.
	Timeout time.Duration

	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// Burst is the maximum request burst.
	Burst int

	// Concurrency is the number of sources fetched at once.
	Concurrency int

	// Headers are extra "Key: Value" request headers.
	Headers []string
}

// ExtractSettings configures extraction and table selection.
type ExtractSettings struct {
	// StripFootnotes removes bracketed footnote markers such as [12].
	StripFootnotes bool

	// Topic holds keywords describing the wanted table.
	Topic []string

	// DataClasses are class names that mark a data table.
	DataClasses []string

	// HeaderKeywords are words expected in a relevant table's header row.
	HeaderKeywords []string

	// SizeCap caps the score awarded for table size.
	SizeCap int
}

// OutputSettings configures serialisation.
type OutputSettings struct {
	// Format is the default output format.
	Format OutputFormat

	// Dir is the directory --all writes into.
	Dir string
}

// HistorySettings configures extraction history.
type HistorySettings struct {
	// Enabled persists every extraction to the history store.
	Enabled bool

	// Dir is the data directory. Empty means the default location.
	Dir string
}

// AppSettings contains all application settings.
type AppSettings struct {
	Fetch   FetchSettings
	Extract ExtractSettings
	Output  OutputSettings
	History HistorySettings
}

// DefaultAppSettings returns the default application settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Fetch: FetchSettings{
			UserAgent:         DefaultUserAgent,
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			Burst:             1,
			Concurrency:       4,
		},
		Extract: ExtractSettings{
			StripFootnotes: true,
			DataClasses:    []string{"wikitable", "sortable", "data-table", "datatable"},
			HeaderKeywords: []string{"name", "year", "designed", "designer", "appeared", "paradigm"},
			SizeCap:        25,
		},
		Output: OutputSettings{
			Format: FormatCSV,
			Dir:    ".",
		},
		History: HistorySettings{
			Enabled: false,
		},
	}
}

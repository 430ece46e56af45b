package domain

import "time"

// Document is decoded markup acquired from a Source.
// Connectors produce it; the extraction engine consumes Text.
type Document struct {
	// Source is where the markup came from.
	Source Source

	// Text is the decoded markup.
	Text string

	// ContentType is the media type reported by the source, if any.
	ContentType string

	// Charset is the name of the encoding used to decode the raw bytes.
	Charset string

	// Size is the number of raw bytes read.
	Size int

	// FetchedAt is when the markup was acquired.
	FetchedAt time.Time
}

// Extraction is the result of running the engine over one Document.
type Extraction struct {
	// ID is the unique identifier for the extraction.
	ID string

	// Source is where the markup came from.
	Source Source

	// Tables holds every extracted table in document order.
	Tables []Table

	// Selected is the index of the chosen table, or -1 when none was chosen.
	Selected int

	// Scores holds the selector score of each table, parallel to Tables.
	// Nil when the table was chosen by explicit index.
	Scores []int

	// CreatedAt is when the extraction ran.
	CreatedAt time.Time
}

// SelectedTable returns the chosen table.
func (e *Extraction) SelectedTable() (Table, bool) {
	if e == nil || e.Selected < 0 || e.Selected >= len(e.Tables) {
		return Table{}, false
	}
	return e.Tables[e.Selected], true
}

// Summaries returns a list-mode summary of every table.
func (e *Extraction) Summaries() []TableSummary {
	if e == nil {
		return nil
	}
	return Summarise(e.Tables)
}

// ExtractOptions controls extraction and selection.
type ExtractOptions struct {
	// Index is an explicit table index. Nil selects by score.
	Index *int

	// Topic holds keywords that describe the wanted table.
	Topic []string

	// KeepFootnotes disables removal of bracketed footnote markers.
	KeepFootnotes bool

	// SkipSelection extracts all tables without choosing one.
	SkipSelection bool

	// Save records the extraction in the history store.
	Save bool
}

// IndexOf returns a pointer to i, for ExtractOptions.Index.
func IndexOf(i int) *int {
	return &i
}

// ExtractionSummary is a history listing entry.
type ExtractionSummary struct {
	ID         string
	Source     Source
	TableCount int
	Selected   int
	CreatedAt  time.Time
}

// Summary returns the history listing entry for the extraction.
func (e *Extraction) Summary() ExtractionSummary {
	return ExtractionSummary{
		ID:         e.ID,
		Source:     e.Source,
		TableCount: len(e.Tables),
		Selected:   e.Selected,
		CreatedAt:  e.CreatedAt,
	}
}

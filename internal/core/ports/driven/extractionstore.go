package driven

import (
	"context"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// ExtractionStore persists extractions for the history command.
type ExtractionStore interface {
	// SaveExtraction stores an extraction and all of its tables.
	// Saving an existing ID replaces it.
	SaveExtraction(ctx context.Context, e *domain.Extraction) error

	// GetExtraction retrieves an extraction with its tables.
	// Returns domain.ErrNotFound if the ID is unknown.
	GetExtraction(ctx context.Context, id string) (*domain.Extraction, error)

	// ListExtractions returns the most recent extractions first.
	// A limit of zero or less returns all of them.
	ListExtractions(ctx context.Context, limit int) ([]domain.ExtractionSummary, error)

	// DeleteExtraction removes an extraction and its tables.
	// Returns domain.ErrNotFound if the ID is unknown.
	DeleteExtraction(ctx context.Context, id string) error
}

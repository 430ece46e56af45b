package driving

import (
	"context"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// HistoryService manages saved extractions.
type HistoryService interface {
	// List returns saved extractions, most recent first.
	List(ctx context.Context, limit int) ([]domain.ExtractionSummary, error)

	// Get retrieves a saved extraction with its tables.
	Get(ctx context.Context, id string) (*domain.Extraction, error)

	// Delete removes a saved extraction.
	Delete(ctx context.Context, id string) error
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
	"github.com/custodia-labs/htmltab/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService manages saved extractions.
type HistoryService struct {
	store driven.ExtractionStore
}

// NewHistoryService creates a new history service. A nil store makes
// every operation fail with domain.ErrStoreUnavailable.
func NewHistoryService(store driven.ExtractionStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns saved extractions, most recent first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.ExtractionSummary, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return s.store.ListExtractions(ctx, limit)
}

// Get retrieves a saved extraction with its tables.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.Extraction, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: extraction ID is required", domain.ErrInvalidInput)
	}
	return s.store.GetExtraction(ctx, id)
}

// Delete removes a saved extraction.
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: extraction ID is required", domain.ErrInvalidInput)
	}
	return s.store.DeleteExtraction(ctx, id)
}

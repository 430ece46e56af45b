package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
)

// Ensure ExtractionStore implements the interface.
var _ driven.ExtractionStore = (*ExtractionStore)(nil)

// ExtractionStore is an in-memory implementation of driven.ExtractionStore.
type ExtractionStore struct {
	mu          sync.RWMutex
	extractions map[string]domain.Extraction
}

// NewExtractionStore creates a new in-memory extraction store.
func NewExtractionStore() *ExtractionStore {
	return &ExtractionStore{
		extractions: make(map[string]domain.Extraction),
	}
}

// SaveExtraction stores or replaces an extraction.
func (s *ExtractionStore) SaveExtraction(_ context.Context, e *domain.Extraction) error {
	if e == nil || e.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractions[e.ID] = *e
	return nil
}

// GetExtraction retrieves an extraction by ID.
func (s *ExtractionStore) GetExtraction(_ context.Context, id string) (*domain.Extraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.extractions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

// ListExtractions returns extractions, most recent first.
func (s *ExtractionStore) ListExtractions(_ context.Context, limit int) ([]domain.ExtractionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ExtractionSummary, 0, len(s.extractions))
	for id := range s.extractions {
		e := s.extractions[id]
		result = append(result, e.Summary())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// DeleteExtraction removes an extraction.
func (s *ExtractionStore) DeleteExtraction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.extractions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.extractions, id)
	return nil
}

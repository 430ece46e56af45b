package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
)

// mockFetcher serves pages from memory.
type mockFetcher struct {
	kinds []domain.SourceKind
	pages map[string]string
	delay time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	calls       atomic.Int32
}

func newMockFetcher(pages map[string]string) *mockFetcher {
	return &mockFetcher{
		kinds: []domain.SourceKind{domain.SourceFile, domain.SourceURL, domain.SourceStdin},
		pages: pages,
	}
}

func (m *mockFetcher) Kinds() []domain.SourceKind {
	return m.kinds
}

func (m *mockFetcher) Fetch(ctx context.Context, src domain.Source) (*domain.Document, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		peak := m.maxInFlight.Load()
		if n <= peak || m.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	text, ok := m.pages[src.Location]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFetchFailed, src.Location)
	}
	return &domain.Document{Source: src, Text: text, Charset: "utf-8", Size: len(text)}, nil
}

// mockWatcher is a fetcher whose Watch replays documents from a channel.
type mockWatcher struct {
	*mockFetcher
	docs chan *domain.Document
	errs chan error
}

func (m *mockWatcher) Watch(_ context.Context, _ domain.Source) (<-chan *domain.Document, <-chan error) {
	return m.docs, m.errs
}

// mockRegistry returns the same fetcher for every kind it serves.
type mockRegistry struct {
	fetcher driven.Fetcher
}

func (r *mockRegistry) Fetcher(src domain.Source) (driven.Fetcher, error) {
	for _, k := range r.fetcher.Kinds() {
		if k == src.Kind {
			return r.fetcher, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, src.Kind)
}

func (r *mockRegistry) Register(f driven.Fetcher) {
	r.fetcher = f
}

// failingStore rejects every write.
type failingStore struct {
	driven.ExtractionStore
}

func (failingStore) SaveExtraction(context.Context, *domain.Extraction) error {
	return fmt.Errorf("disk full")
}

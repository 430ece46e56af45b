package connectors

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/htmltab/internal/connectors/filesystem"
	"github.com/custodia-labs/htmltab/internal/connectors/web"
	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.FetcherRegistry = (*Registry)(nil)

// Registry maps source kinds to fetchers.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[domain.SourceKind]driven.Fetcher
}

// NewRegistry creates a registry holding the given fetchers.
func NewRegistry(fetchers ...driven.Fetcher) *Registry {
	r := &Registry{fetchers: make(map[domain.SourceKind]driven.Fetcher)}
	for _, f := range fetchers {
		r.Register(f)
	}
	return r
}

// NewDefaultRegistry creates a registry with the built-in filesystem and web
// fetchers configured from settings.
func NewDefaultRegistry(settings domain.FetchSettings) (*Registry, error) {
	webConnector, err := web.New(web.ConfigFromSettings(settings))
	if err != nil {
		return nil, fmt.Errorf("failed to create web connector: %w", err)
	}
	return NewRegistry(filesystem.New(), webConnector), nil
}

// Register adds f for each of its kinds, replacing any previous fetcher.
func (r *Registry) Register(f driven.Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kind := range f.Kinds() {
		r.fetchers[kind] = f
	}
}

// Fetcher returns the fetcher for src.Kind.
func (r *Registry) Fetcher(src domain.Source) (driven.Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fetchers[src.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: no fetcher for %s source %q", domain.ErrUnsupportedSource, src.Kind, src.Location)
	}
	return f, nil
}

// Kinds returns the registered source kinds in sorted order.
func (r *Registry) Kinds() []domain.SourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]domain.SourceKind, 0, len(r.fetchers))
	for k := range r.fetchers {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

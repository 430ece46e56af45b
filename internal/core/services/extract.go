package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
	"github.com/custodia-labs/htmltab/internal/core/ports/driving"
	"github.com/custodia-labs/htmltab/internal/htmltable"
	"github.com/custodia-labs/htmltab/internal/logger"
	"github.com/custodia-labs/htmltab/internal/selection"
)

// Ensure ExtractService implements the interface.
var _ driving.ExtractService = (*ExtractService)(nil)

// ExtractService acquires markup, extracts its tables and selects one.
type ExtractService struct {
	fetchers driven.FetcherRegistry
	store    driven.ExtractionStore
	settings domain.AppSettings
	now      func() time.Time
}

// NewExtractService creates a new extract service.
// The store may be nil, in which case extractions cannot be saved.
func NewExtractService(
	fetchers driven.FetcherRegistry,
	store driven.ExtractionStore,
	settings domain.AppSettings,
) *ExtractService {
	return &ExtractService{
		fetchers: fetchers,
		store:    store,
		settings: settings,
		now:      time.Now,
	}
}

// Extract fetches the location and extracts its tables.
func (s *ExtractService) Extract(
	ctx context.Context,
	location string,
	opts domain.ExtractOptions,
) (*domain.Extraction, error) {
	src := domain.ParseSource(location)
	fetcher, err := s.fetchers.Fetcher(src)
	if err != nil {
		return nil, err
	}

	done := logger.Timed("fetch " + src.Location)
	doc, err := fetcher.Fetch(ctx, src)
	done()
	if err != nil {
		return nil, err
	}

	return s.ExtractDocument(ctx, doc, opts)
}

// ExtractDocument runs extraction and selection over doc.
func (s *ExtractService) ExtractDocument(
	ctx context.Context,
	doc *domain.Document,
	opts domain.ExtractOptions,
) (*domain.Extraction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", domain.ErrInvalidInput)
	}

	keep := opts.KeepFootnotes || !s.settings.Extract.StripFootnotes
	tables := htmltable.Extract(doc.Text, htmltable.WithOptions(htmltable.Options{KeepFootnotes: keep}))
	logger.Debug("%s: %d tables", doc.Source.Location, len(tables))

	e := &domain.Extraction{
		ID:        uuid.NewString(),
		Source:    doc.Source,
		Tables:    tables,
		Selected:  -1,
		CreatedAt: s.now().UTC(),
	}
	if len(tables) == 0 {
		return e, domain.ErrNoTables
	}

	if !opts.SkipSelection {
		if err := s.selectTable(e, opts); err != nil {
			return e, err
		}
	}

	if err := s.save(ctx, e, opts); err != nil {
		return e, err
	}
	return e, nil
}

func (s *ExtractService) selectTable(e *domain.Extraction, opts domain.ExtractOptions) error {
	scorer := selection.NewScorer(s.settings.Extract, opts.Topic)

	if opts.Index != nil {
		idx, err := scorer.Select(e.Tables, opts.Index)
		if err != nil {
			return err
		}
		e.Selected = idx
		return nil
	}

	e.Scores = scorer.Scores(e.Tables)
	e.Selected = selection.Best(e.Scores)
	if logger.IsVerbose() {
		for i, score := range e.Scores {
			if score == selection.Disqualified {
				logger.Debug("table %d: disqualified (%d rows)", i, len(e.Tables[i].Rows))
				continue
			}
			logger.Debug("table %d: score %d", i, score)
		}
		logger.Debug("selected table %d", e.Selected)
	}
	return nil
}

// save records the extraction when requested or when history is enabled.
func (s *ExtractService) save(ctx context.Context, e *domain.Extraction, opts domain.ExtractOptions) error {
	if !opts.Save && !s.settings.History.Enabled {
		return nil
	}
	if s.store == nil {
		if opts.Save {
			return domain.ErrStoreUnavailable
		}
		logger.Warn("history is enabled but no history store is configured")
		return nil
	}
	if err := s.store.SaveExtraction(ctx, e); err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	logger.Debug("saved extraction %s", e.ID)
	return nil
}

// ExtractMany extracts several locations concurrently, at most
// fetch.concurrency at a time. Results keep the order of locations.
func (s *ExtractService) ExtractMany(
	ctx context.Context,
	locations []string,
	opts domain.ExtractOptions,
) []driving.ExtractResult {
	results := make([]driving.ExtractResult, len(locations))
	sem := make(chan struct{}, max(s.settings.Fetch.Concurrency, 1))

	var wg sync.WaitGroup
	for i, location := range locations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i].Location = location

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return
			}
			defer func() { <-sem }()

			results[i].Extraction, results[i].Err = s.Extract(ctx, location, opts)
		}()
	}
	wg.Wait()

	return results
}

// Watch re-extracts a local file every time it changes.
func (s *ExtractService) Watch(
	ctx context.Context,
	location string,
	opts domain.ExtractOptions,
) (<-chan *domain.Extraction, <-chan error, error) {
	src := domain.ParseSource(location)
	fetcher, err := s.fetchers.Fetcher(src)
	if err != nil {
		return nil, nil, err
	}
	watcher, ok := fetcher.(driven.Watcher)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s sources cannot be watched", domain.ErrUnsupportedSource, src.Kind)
	}

	docs, watchErrs := watcher.Watch(ctx, src)
	out := make(chan *domain.Extraction)
	errs := make(chan error)

	go func() {
		defer close(out)
		defer close(errs)

		for docs != nil || watchErrs != nil {
			select {
			case <-ctx.Done():
				return

			case doc, ok := <-docs:
				if !ok {
					docs = nil
					continue
				}
				e, err := s.ExtractDocument(ctx, doc, opts)
				if err != nil && !errors.Is(err, domain.ErrNoTables) {
					if !send(ctx, errs, err) {
						return
					}
					continue
				}
				if !send(ctx, out, e) {
					return
				}

			case err, ok := <-watchErrs:
				if !ok {
					watchErrs = nil
					continue
				}
				if !send(ctx, errs, err) {
					return
				}
			}
		}
	}()

	return out, errs, nil
}

// send delivers v unless ctx is cancelled first.
func send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

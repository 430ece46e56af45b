package driven

import (
	"context"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// Fetcher reads markup from a source and decodes it to text.
// Each source kind (file, stdin, url) has one implementation.
type Fetcher interface {
	// Kinds returns the source kinds this fetcher reads.
	Kinds() []domain.SourceKind

	// Fetch reads the source and returns the decoded document.
	// Failures wrap domain.ErrFetchFailed or domain.ErrDecodeFailed.
	Fetch(ctx context.Context, src domain.Source) (*domain.Document, error)
}

// Watcher re-reads a source whenever it changes.
type Watcher interface {
	// Watch emits the current document immediately and again after every
	// change, until ctx is cancelled. Both channels are closed on return.
	// Errors are sent on the error channel and do not stop the watch.
	Watch(ctx context.Context, src domain.Source) (<-chan *domain.Document, <-chan error)
}

// FetcherRegistry selects the fetcher for a source.
type FetcherRegistry interface {
	// Fetcher returns the fetcher registered for src.Kind.
	// Returns domain.ErrUnsupportedSource if none is registered.
	Fetcher(src domain.Source) (Fetcher, error)

	// Register adds a fetcher for each of its kinds, replacing any previous one.
	Register(f Fetcher)
}

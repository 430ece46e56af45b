// Package filesystem reads markup from local files and standard input.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/htmltab/internal/connectors/textdecode"
	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
	"github.com/custodia-labs/htmltab/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.Fetcher = (*Connector)(nil)
	_ driven.Watcher = (*Connector)(nil)
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Option configures a Connector.
type Option func(*Connector)

// WithStdin replaces the reader used for the "-" source.
func WithStdin(r io.Reader) Option {
	return func(c *Connector) {
		c.stdin = r
	}
}

// WithDebounce sets how long Watch waits for events to settle.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		c.debounce = d
	}
}

// Connector fetches local files and standard input.
type Connector struct {
	stdin    io.Reader
	debounce time.Duration
}

// New creates a filesystem connector.
func New(opts ...Option) *Connector {
	c := &Connector{
		stdin:    os.Stdin,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kinds returns the source kinds this connector reads.
func (c *Connector) Kinds() []domain.SourceKind {
	return []domain.SourceKind{domain.SourceFile, domain.SourceStdin}
}

// Fetch reads the file or standard input and decodes it.
func (c *Connector) Fetch(ctx context.Context, src domain.Source) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	var err error
	switch src.Kind {
	case domain.SourceFile:
		raw, err = os.ReadFile(ResolvePath(src.Location))
	case domain.SourceStdin:
		raw, err = io.ReadAll(c.stdin)
	default:
		return nil, fmt.Errorf("%w: %s source %q", domain.ErrUnsupportedSource, src.Kind, src.Location)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}

	decoded, err := textdecode.Decode(raw, "")
	if err != nil {
		return nil, err
	}
	logger.Debug("read %s: %d bytes, charset %s", src.Location, len(raw), decoded.Charset)

	return &domain.Document{
		Source:    src,
		Text:      decoded.Text,
		Charset:   decoded.Charset,
		Size:      len(raw),
		FetchedAt: time.Now(),
	}, nil
}

// Watch emits the file's document now and again after each change.
// The parent directory is watched so files replaced by rename are followed.
func (c *Connector) Watch(ctx context.Context, src domain.Source) (<-chan *domain.Document, <-chan error) {
	docs := make(chan *domain.Document, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if src.Kind != domain.SourceFile {
			send(ctx, errs, fmt.Errorf("%w: only local files can be watched", domain.ErrUnsupportedSource))
			return
		}
		path := ResolvePath(src.Location)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			send(ctx, errs, fmt.Errorf("failed to create watcher: %w", err))
			return
		}
		defer watcher.Close()

		if err := watcher.Add(filepath.Dir(path)); err != nil {
			send(ctx, errs, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err))
			return
		}

		emit := func() bool {
			doc, err := c.Fetch(ctx, src)
			if err != nil {
				return send(ctx, errs, err)
			}
			return send(ctx, docs, doc)
		}
		if !emit() {
			return
		}

		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if c.handleFsEvent(event, path) {
					settle = time.After(c.debounce)
				}

			case <-settle:
				settle = nil
				if !emit() {
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if !send(ctx, errs, err) {
					return
				}
			}
		}
	}()

	return docs, errs
}

// handleFsEvent reports whether event changes the watched file's content.
func (c *Connector) handleFsEvent(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
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

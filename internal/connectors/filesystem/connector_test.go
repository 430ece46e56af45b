package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
)

const page = `<table><tr><th>Name</th></tr><tr><td>Go</td></tr></table>`

func writePage(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNew(t *testing.T) {
	t.Run("uses defaults", func(t *testing.T) {
		connector := New()

		require.NotNil(t, connector)
		assert.Equal(t, os.Stdin, connector.stdin)
		assert.Equal(t, DefaultDebounce, connector.debounce)
	})

	t.Run("applies options", func(t *testing.T) {
		in := strings.NewReader("x")
		connector := New(WithStdin(in), WithDebounce(time.Second))

		assert.Equal(t, in, connector.stdin)
		assert.Equal(t, time.Second, connector.debounce)
	})

	t.Run("implements Fetcher and Watcher", func(t *testing.T) {
		var _ driven.Fetcher = New()
		var _ driven.Watcher = New()
	})
}

func TestConnector_Kinds(t *testing.T) {
	assert.ElementsMatch(t,
		[]domain.SourceKind{domain.SourceFile, domain.SourceStdin},
		New().Kinds())
}

func TestConnector_Fetch(t *testing.T) {
	t.Run("reads a file", func(t *testing.T) {
		path := writePage(t, t.TempDir(), "langs.html", page)

		doc, err := New().Fetch(context.Background(), domain.ParseSource(path))

		require.NoError(t, err)
		assert.Equal(t, page, doc.Text)
		assert.Equal(t, "utf-8", doc.Charset)
		assert.Equal(t, len(page), doc.Size)
		assert.Equal(t, domain.SourceFile, doc.Source.Kind)
		assert.False(t, doc.FetchedAt.IsZero())
	})

	t.Run("reads a file:// URI", func(t *testing.T) {
		path := writePage(t, t.TempDir(), "langs.html", page)

		doc, err := New().Fetch(context.Background(), domain.ParseSource("file://"+path))

		require.NoError(t, err)
		assert.Equal(t, page, doc.Text)
	})

	t.Run("decodes a declared charset", func(t *testing.T) {
		path := writePage(t, t.TempDir(), "latin.html",
			`<meta charset="iso-8859-1"><table><tr><td>caf`+"\xe9</td></tr></table>")

		doc, err := New().Fetch(context.Background(), domain.ParseSource(path))

		require.NoError(t, err)
		assert.Contains(t, doc.Text, "café")
		assert.Equal(t, "windows-1252", doc.Charset)
	})

	t.Run("reads stdin", func(t *testing.T) {
		connector := New(WithStdin(strings.NewReader(page)))

		doc, err := connector.Fetch(context.Background(), domain.ParseSource("-"))

		require.NoError(t, err)
		assert.Equal(t, page, doc.Text)
		assert.Equal(t, domain.SourceStdin, doc.Source.Kind)
	})

	t.Run("missing file is a fetch failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.html")

		_, err := New().Fetch(context.Background(), domain.ParseSource(path))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("rejects URLs", func(t *testing.T) {
		_, err := New().Fetch(context.Background(), domain.ParseSource("https://example.com"))

		assert.ErrorIs(t, err, domain.ErrUnsupportedSource)
	})

	t.Run("respects cancelled context", func(t *testing.T) {
		path := writePage(t, t.TempDir(), "langs.html", page)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New().Fetch(ctx, domain.ParseSource(path))

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConnector_Watch(t *testing.T) {
	t.Run("emits the current document first", func(t *testing.T) {
		path := writePage(t, t.TempDir(), "watched.html", page)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		docs, _ := New().Watch(ctx, domain.ParseSource(path))

		select {
		case doc := <-docs:
			require.NotNil(t, doc)
			assert.Equal(t, page, doc.Text)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timeout waiting for initial document")
		}
	})

	t.Run("detects file modifications", func(t *testing.T) {
		path := writePage(t, t.TempDir(), "watched.html", page)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		docs, _ := New(WithDebounce(10*time.Millisecond)).Watch(ctx, domain.ParseSource(path))
		<-docs

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(path, []byte("<table><tr><td>modified</td></tr></table>"), 0644)
		}()

		select {
		case doc := <-docs:
			require.NotNil(t, doc)
			assert.Contains(t, doc.Text, "modified")
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file modification event")
		}
	})

	t.Run("ignores other files in the directory", func(t *testing.T) {
		dir := t.TempDir()
		path := writePage(t, dir, "watched.html", page)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		docs, _ := New(WithDebounce(10*time.Millisecond)).Watch(ctx, domain.ParseSource(path))
		<-docs

		writePage(t, dir, "other.html", "other")

		select {
		case doc := <-docs:
			t.Fatalf("unexpected document: %q", doc.Text)
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("closes channels when context is cancelled", func(t *testing.T) {
		path := writePage(t, t.TempDir(), "watched.html", page)
		ctx, cancel := context.WithCancel(context.Background())

		docs, errs := New().Watch(ctx, domain.ParseSource(path))
		<-docs
		cancel()

		select {
		case _, ok := <-docs:
			assert.False(t, ok, "documents channel should be closed")
		case <-time.After(500 * time.Millisecond):
			t.Fatal("documents channel not closed")
		}
		select {
		case _, ok := <-errs:
			assert.False(t, ok, "error channel should be closed")
		case <-time.After(500 * time.Millisecond):
			t.Fatal("error channel not closed")
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_, errs := New().Watch(ctx, domain.ParseSource("/non/existent/path/page.html"))

		select {
		case err := <-errs:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to watch")
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timeout waiting for error")
		}
	})

	t.Run("rejects stdin", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_, errs := New().Watch(ctx, domain.ParseSource("-"))

		select {
		case err := <-errs:
			assert.ErrorIs(t, err, domain.ErrUnsupportedSource)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timeout waiting for error")
		}
	})
}

// TestHandleFsEvent tests the handleFsEvent function with various event types.
func TestHandleFsEvent(t *testing.T) {
	const watched = "/data/page.html"

	tests := []struct {
		name      string
		eventPath string
		operation fsnotify.Op
		want      bool
	}{
		{name: "write file event", eventPath: watched, operation: fsnotify.Write, want: true},
		{name: "create file event", eventPath: watched, operation: fsnotify.Create, want: true},
		{name: "write and chmod together", eventPath: watched, operation: fsnotify.Write | fsnotify.Chmod, want: true},
		{name: "chmod file event - not handled", eventPath: watched, operation: fsnotify.Chmod, want: false},
		{name: "remove file event - not handled", eventPath: watched, operation: fsnotify.Remove, want: false},
		{name: "rename file event - not handled", eventPath: watched, operation: fsnotify.Rename, want: false},
		{name: "other file write - skipped", eventPath: "/data/other.html", operation: fsnotify.Write, want: false},
		{name: "unclean path is matched", eventPath: "/data/./page.html", operation: fsnotify.Write, want: true},
	}

	connector := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: tt.eventPath, Op: tt.operation}
			assert.Equal(t, tt.want, connector.handleFsEvent(event, watched))
		})
	}
}

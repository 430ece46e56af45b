package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/htmltab/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/selection"
)

// languagesPage has a navigation table, the wanted data table and a larger
// unlabelled table.
const languagesPage = `<html><body>
<table id="nav"><tr><td>Home</td></tr><tr><td>About</td></tr></table>
<table class="wikitable sortable">
  <caption>Programming languages</caption>
  <tr><th>Name</th><th>Year</th><th>Designer</th></tr>
  <tr><td>C</td><td>1972</td><td>Dennis Ritchie</td></tr>
  <tr><td>Go</td><td>2009</td><td>Robert Griesemer[1]</td></tr>
  <tr><td>Lisp</td><td>1958</td><td>John McCarthy</td></tr>
  <tr><td>Python</td><td>1991</td><td>Guido van Rossum</td></tr>
</table>
<table>
  <tr><td>1</td></tr><tr><td>2</td></tr><tr><td>3</td></tr>
  <tr><td>4</td></tr><tr><td>5</td></tr><tr><td>6</td></tr>
</table>
</body></html>`

func newTestExtractService(store *memory.ExtractionStore, settings domain.AppSettings) (*ExtractService, *mockFetcher) {
	fetcher := newMockFetcher(map[string]string{
		"langs.html": languagesPage,
		"empty.html": "<p>no tables here</p>",
	})
	var svc *ExtractService
	if store == nil {
		svc = NewExtractService(&mockRegistry{fetcher: fetcher}, nil, settings)
	} else {
		svc = NewExtractService(&mockRegistry{fetcher: fetcher}, store, settings)
	}
	return svc, fetcher
}

func TestExtractService_Extract_SelectsByScore(t *testing.T) {
	svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

	e, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{})

	require.NoError(t, err)
	require.Len(t, e.Tables, 3)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "langs.html", e.Source.Location)
	assert.False(t, e.CreatedAt.IsZero())

	// wikitable +10, "name" and "year" and "designer" headers +18, 5 rows.
	assert.Equal(t, []int{selection.Disqualified, 33, 6}, e.Scores)
	assert.Equal(t, 1, e.Selected)

	table, ok := e.SelectedTable()
	require.True(t, ok)
	assert.Equal(t, "Programming languages", table.Caption)
	assert.Equal(t, "Robert Griesemer", table.Rows[2][2].Text)
}

func TestExtractService_Extract_ExplicitIndex(t *testing.T) {
	svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

	e, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{Index: domain.IndexOf(2)})

	require.NoError(t, err)
	assert.Equal(t, 2, e.Selected)
	assert.Nil(t, e.Scores)
}

func TestExtractService_Extract_IndexOutOfRange(t *testing.T) {
	svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

	e, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{Index: domain.IndexOf(7)})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	var rangeErr *domain.IndexOutOfRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 3, rangeErr.Count)
	require.NotNil(t, e)
	assert.Len(t, e.Tables, 3)
	assert.Equal(t, -1, e.Selected)
}

func TestExtractService_Extract_NoTables(t *testing.T) {
	svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

	e, err := svc.Extract(context.Background(), "empty.html", domain.ExtractOptions{})

	assert.ErrorIs(t, err, domain.ErrNoTables)
	require.NotNil(t, e)
	assert.Empty(t, e.Tables)
	assert.Equal(t, -1, e.Selected)
}

func TestExtractService_Extract_FetchError(t *testing.T) {
	svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

	e, err := svc.Extract(context.Background(), "missing.html", domain.ExtractOptions{})

	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Nil(t, e)
}

func TestExtractService_Extract_UnsupportedSource(t *testing.T) {
	fetcher := newMockFetcher(nil)
	fetcher.kinds = []domain.SourceKind{domain.SourceFile}
	svc := NewExtractService(&mockRegistry{fetcher: fetcher}, nil, domain.DefaultAppSettings())

	_, err := svc.Extract(context.Background(), "https://example.com", domain.ExtractOptions{})

	assert.ErrorIs(t, err, domain.ErrUnsupportedSource)
}

func TestExtractService_Extract_Topic(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Extract.DataClasses = nil
	settings.Extract.HeaderKeywords = nil
	svc, _ := newTestExtractService(nil, settings)

	e, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{Topic: []string{"programming"}})

	require.NoError(t, err)
	// caption keyword +8 beats the larger unlabelled table.
	assert.Equal(t, []int{selection.Disqualified, 13, 6}, e.Scores)
	assert.Equal(t, 1, e.Selected)
}

func TestExtractService_Extract_Footnotes(t *testing.T) {
	t.Run("option keeps footnotes", func(t *testing.T) {
		svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

		e, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{KeepFootnotes: true})

		require.NoError(t, err)
		assert.Equal(t, "Robert Griesemer[1]", e.Tables[1].Rows[2][2].Text)
	})

	t.Run("setting keeps footnotes", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Extract.StripFootnotes = false
		svc, _ := newTestExtractService(nil, settings)

		e, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{})

		require.NoError(t, err)
		assert.Equal(t, "Robert Griesemer[1]", e.Tables[1].Rows[2][2].Text)
	})
}

func TestExtractService_Extract_SkipSelection(t *testing.T) {
	svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

	e, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{SkipSelection: true})

	require.NoError(t, err)
	assert.Len(t, e.Tables, 3)
	assert.Equal(t, -1, e.Selected)
	assert.Nil(t, e.Scores)
}

func TestExtractService_Extract_Save(t *testing.T) {
	t.Run("saves when asked", func(t *testing.T) {
		store := memory.NewExtractionStore()
		svc, _ := newTestExtractService(store, domain.DefaultAppSettings())

		e, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{Save: true})
		require.NoError(t, err)

		saved, err := store.GetExtraction(context.Background(), e.ID)
		require.NoError(t, err)
		assert.Equal(t, e.Selected, saved.Selected)
		assert.Len(t, saved.Tables, 3)
	})

	t.Run("saves when history is enabled", func(t *testing.T) {
		store := memory.NewExtractionStore()
		settings := domain.DefaultAppSettings()
		settings.History.Enabled = true
		svc, _ := newTestExtractService(store, settings)

		_, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{})
		require.NoError(t, err)

		list, err := store.ListExtractions(context.Background(), 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("does not save by default", func(t *testing.T) {
		store := memory.NewExtractionStore()
		svc, _ := newTestExtractService(store, domain.DefaultAppSettings())

		_, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{})
		require.NoError(t, err)

		list, err := store.ListExtractions(context.Background(), 0)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("save without store fails", func(t *testing.T) {
		svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

		e, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{Save: true})

		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.NotNil(t, e)
	})

	t.Run("enabled history without store is tolerated", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.History.Enabled = true
		svc, _ := newTestExtractService(nil, settings)

		_, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{})

		assert.NoError(t, err)
	})

	t.Run("store errors are reported", func(t *testing.T) {
		fetcher := newMockFetcher(map[string]string{"langs.html": languagesPage})
		svc := NewExtractService(&mockRegistry{fetcher: fetcher}, failingStore{}, domain.DefaultAppSettings())

		_, err := svc.Extract(context.Background(), "langs.html", domain.ExtractOptions{Save: true})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save extraction")
	})
}

func TestExtractService_ExtractDocument(t *testing.T) {
	svc, fetcher := newTestExtractService(nil, domain.DefaultAppSettings())
	doc := &domain.Document{Source: domain.ParseSource("-"), Text: languagesPage}

	e, err := svc.ExtractDocument(context.Background(), doc, domain.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, e.Selected)
	assert.Equal(t, domain.SourceStdin, e.Source.Kind)
	assert.Zero(t, fetcher.calls.Load())

	_, err = svc.ExtractDocument(context.Background(), nil, domain.ExtractOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractService_ExtractMany(t *testing.T) {
	t.Run("bounds concurrency and keeps order", func(t *testing.T) {
		pages := map[string]string{}
		var locations []string
		for i := 0; i < 6; i++ {
			loc := fmt.Sprintf("page%d.html", i)
			pages[loc] = languagesPage
			locations = append(locations, loc)
		}
		locations = append(locations, "missing.html")

		settings := domain.DefaultAppSettings()
		settings.Fetch.Concurrency = 2
		fetcher := newMockFetcher(pages)
		fetcher.delay = 20 * time.Millisecond
		svc := NewExtractService(&mockRegistry{fetcher: fetcher}, nil, settings)

		results := svc.ExtractMany(context.Background(), locations, domain.ExtractOptions{})

		require.Len(t, results, len(locations))
		for i, r := range results[:6] {
			assert.Equal(t, locations[i], r.Location)
			require.NoError(t, r.Err)
			assert.Equal(t, 1, r.Extraction.Selected)
		}
		assert.ErrorIs(t, results[6].Err, domain.ErrFetchFailed)
		assert.LessOrEqual(t, fetcher.maxInFlight.Load(), int32(2))
		assert.Equal(t, int32(7), fetcher.calls.Load())
	})

	t.Run("cancelled context fails every location", func(t *testing.T) {
		svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results := svc.ExtractMany(ctx, []string{"langs.html", "langs.html"}, domain.ExtractOptions{})

		for _, r := range results {
			assert.Error(t, r.Err)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

		assert.Empty(t, svc.ExtractMany(context.Background(), nil, domain.ExtractOptions{}))
	})
}

func TestExtractService_Watch(t *testing.T) {
	t.Run("re-extracts each document", func(t *testing.T) {
		watcher := &mockWatcher{
			mockFetcher: newMockFetcher(nil),
			docs:        make(chan *domain.Document, 2),
			errs:        make(chan error, 1),
		}
		svc := NewExtractService(&mockRegistry{fetcher: watcher}, nil, domain.DefaultAppSettings())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out, errs, err := svc.Watch(ctx, "langs.html", domain.ExtractOptions{})
		require.NoError(t, err)

		src := domain.ParseSource("langs.html")
		watcher.docs <- &domain.Document{Source: src, Text: languagesPage}
		watcher.docs <- &domain.Document{Source: src, Text: "<p>gone</p>"}
		watcher.errs <- errors.New("watch failed")

		var extractions []int
		var watchErr error
		deadline := time.After(time.Second)
		for len(extractions) < 2 || watchErr == nil {
			select {
			case e := <-out:
				extractions = append(extractions, len(e.Tables))
			case err := <-errs:
				watchErr = err
			case <-deadline:
				t.Fatal("timeout waiting for watch results")
			}
		}
		assert.Equal(t, []int{3, 0}, extractions)
		assert.EqualError(t, watchErr, "watch failed")
	})

	t.Run("closes when the source closes", func(t *testing.T) {
		watcher := &mockWatcher{
			mockFetcher: newMockFetcher(nil),
			docs:        make(chan *domain.Document),
			errs:        make(chan error),
		}
		svc := NewExtractService(&mockRegistry{fetcher: watcher}, nil, domain.DefaultAppSettings())

		out, errs, err := svc.Watch(context.Background(), "langs.html", domain.ExtractOptions{})
		require.NoError(t, err)
		close(watcher.docs)
		close(watcher.errs)

		select {
		case _, ok := <-out:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("extraction channel not closed")
		}
		_, ok := <-errs
		assert.False(t, ok)
	})

	t.Run("requires a watchable source", func(t *testing.T) {
		svc, _ := newTestExtractService(nil, domain.DefaultAppSettings())

		_, _, err := svc.Watch(context.Background(), "langs.html", domain.ExtractOptions{})

		assert.ErrorIs(t, err, domain.ErrUnsupportedSource)
	})
}

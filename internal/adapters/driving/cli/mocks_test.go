package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/htmltab/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/htmltab/internal/connectors"
	"github.com/custodia-labs/htmltab/internal/connectors/filesystem"
	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driving"
	"github.com/custodia-labs/htmltab/internal/core/services"
	"github.com/custodia-labs/htmltab/internal/serialisers"
)

const langsPage = `<html><body>
<table><tr><td>Home</td><td>About</td></tr></table>
<table class="wikitable">
<caption>Languages</caption>
<tr><th>Name</th><th>Year</th></tr>
<tr><td>Go</td><td>2009</td></tr>
<tr><td>Rust</td><td>2015</td></tr>
<tr><td>Zig</td><td>2016</td></tr>
</table>
</body></html>`

// testEnv holds the services installed for a command test.
type testEnv struct {
	dir      string
	page     string
	store    *memory.ExtractionStore
	settings *services.SettingsService
}

// setupTestServices installs real services backed by in-memory stores and
// returns a cleanup function restoring the previous ones.
func setupTestServices(t *testing.T) (*testEnv, func()) {
	t.Helper()

	oldExtract, oldExport := extractService, exportService
	oldHistory, oldSettings := historyService, settingsService
	oldBootstrap := bootstrap

	dir := t.TempDir()
	env := &testEnv{
		dir:      dir,
		page:     writeFile(t, dir, "langs.html", langsPage),
		store:    memory.NewExtractionStore(),
		settings: services.NewSettingsService(memory.NewConfigStore()),
	}

	SetServices(&Services{
		Extract: services.NewExtractService(
			connectors.NewRegistry(filesystem.New()),
			env.store,
			domain.DefaultAppSettings(),
		),
		Export:   services.NewExportService(serialisers.NewDefaultRegistry()),
		History:  services.NewHistoryService(env.store),
		Settings: env.settings,
	})
	bootstrap = nil

	return env, func() {
		extractService, exportService = oldExtract, oldExport
		historyService, settingsService = oldHistory, oldSettings
		bootstrap = oldBootstrap
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the root command with args and returns everything it wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables and clears the changed marks cobra
// keeps between executions of the same command tree.
func resetFlags() {
	verbose, configDir = false, ""

	extractTable, extractList, extractAll = 0, false, false
	extractOut, extractDir, extractFormat = "", "", ""
	extractTopic, extractKeepFootnotes, extractSave = nil, false, false

	watchTopic, watchKeepFootnotes = nil, false
	browseTopic, browseKeepFootnotes, browseDir = nil, false, ""
	historyLimit, historyJSON, historyTable, historyFormat = 20, false, 0, ""
	mcpPort, mcpHTTP = 0, false

	var unmark func(c *cobra.Command)
	unmark = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		c.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		for _, sub := range c.Commands() {
			unmark(sub)
		}
	}
	unmark(rootCmd)
}

func testTime() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

// savedExtraction stores a two table extraction under id.
func savedExtraction(t *testing.T, env *testEnv, id string) *domain.Extraction {
	t.Helper()
	mk := func(texts ...string) domain.Row {
		r := make(domain.Row, len(texts))
		for i, text := range texts {
			r[i] = domain.Cell{Kind: domain.CellData, Text: text}
		}
		return r
	}
	e := &domain.Extraction{
		ID:     id,
		Source: domain.ParseSource("https://example.com/wiki/Languages"),
		Tables: []domain.Table{
			{Attributes: map[string]string{}, Rows: []domain.Row{mk("menu")}},
			{
				Attributes: map[string]string{"class": "wikitable"},
				Caption:    "Languages",
				Rows:       []domain.Row{mk("Name", "Year"), mk("Go", "2009")},
			},
		},
		Selected:  1,
		CreatedAt: testTime(),
	}
	require.NoError(t, env.store.SaveExtraction(context.Background(), e))
	return e
}

// fakeWatchService replays extractions instead of watching the filesystem.
type fakeWatchService struct {
	driving.ExtractService
	updates []*domain.Extraction
}

func (f *fakeWatchService) Watch(
	_ context.Context, _ string, _ domain.ExtractOptions,
) (<-chan *domain.Extraction, <-chan error, error) {
	out := make(chan *domain.Extraction, len(f.updates))
	for _, e := range f.updates {
		out <- e
	}
	close(out)

	errs := make(chan error)
	close(errs)
	return out, errs, nil
}

package mcp

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/htmltab/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/htmltab/internal/connectors"
	"github.com/custodia-labs/htmltab/internal/connectors/filesystem"
	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/services"
	"github.com/custodia-labs/htmltab/internal/serialisers"
)

const testPage = `<html><body>
<table><tr><td>menu</td></tr></table>
<table class="wikitable">
  <caption>Languages</caption>
  <tr><th>Name</th><th>Year</th></tr>
  <tr><td>Go</td><td>2009</td></tr>
  <tr><td>Rust</td><td>2015</td></tr>
</table>
</body></html>`

// testEnv wires real services over a temporary page and in-memory history.
type testEnv struct {
	server  *Server
	ports   *Ports
	history *memory.ExtractionStore
	page    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	page := filepath.Join(t.TempDir(), "langs.html")
	require.NoError(t, os.WriteFile(page, []byte(testPage), 0o600))

	history := memory.NewExtractionStore()
	registry := connectors.NewRegistry(filesystem.New())
	ports := &Ports{
		Extract: services.NewExtractService(registry, history, domain.DefaultAppSettings()),
		Export:  services.NewExportService(serialisers.NewDefaultRegistry()),
		History: services.NewHistoryService(history),
	}

	server, err := NewServer(ports)
	require.NoError(t, err)

	return &testEnv{server: server, ports: ports, history: history, page: page}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func testTime(minute int) time.Time {
	return time.Date(2026, 1, 1, 0, minute, 0, 0, time.UTC)
}

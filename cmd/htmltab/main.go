// Command htmltab extracts tables from HTML documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/htmltab/internal/adapters/driven/config/file"
	"github.com/custodia-labs/htmltab/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/cli"
	"github.com/custodia-labs/htmltab/internal/connectors"
	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
	"github.com/custodia-labs/htmltab/internal/core/services"
	"github.com/custodia-labs/htmltab/internal/logger"
	"github.com/custodia-labs/htmltab/internal/serialisers"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes.
const (
	exitError    = 1
	exitNoTables = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, "htmltab:", err)
	if errors.Is(err, domain.ErrNoTables) {
		return exitNoTables
	}
	return exitError
}

// bootstrap wires the configuration, connectors, history store and services.
func bootstrap(configDir string) (*cli.Services, func() error, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	if err := settingsService.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid settings: %w", err)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}

	registry, err := connectors.NewDefaultRegistry(settings.Fetch)
	if err != nil {
		return nil, nil, err
	}

	release := func() error { return nil }

	// A missing history store only disables history.
	var store driven.ExtractionStore
	sqliteStore, err := sqlite.NewStore(historyDir(configDir, settings.History.Dir))
	if err != nil {
		logger.Warn("history unavailable: %v", err)
	} else {
		store = sqliteStore.ExtractionStore()
		release = sqliteStore.Close
	}

	svc := &cli.Services{
		Extract:  services.NewExtractService(registry, store, *settings),
		Export:   services.NewExportService(serialisers.NewDefaultRegistry()),
		Settings: settingsService,
	}
	if store != nil {
		svc.History = services.NewHistoryService(store)
	}
	return svc, release, nil
}

// historyDir picks the history database directory: the configured one,
// else data/ under an explicit config directory, else the store default.
func historyDir(configDir, configured string) string {
	if configured != "" {
		return configured
	}
	if configDir != "" {
		return filepath.Join(configDir, "data")
	}
	return ""
}

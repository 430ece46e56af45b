// Package cli implements the htmltab command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/htmltab/internal/core/ports/driving"
	"github.com/custodia-labs/htmltab/internal/logger"
)

// version is overridden at build time.
var version = "dev"

// Services bundles the core services the commands call.
type Services struct {
	Extract  driving.ExtractService
	Export   driving.ExportService
	History  driving.HistoryService
	Settings driving.SettingsService
}

// Bootstrap builds the services for a configuration directory. An empty
// directory selects the default location. The returned function releases
// whatever the services hold open.
type Bootstrap func(configDir string) (*Services, func() error, error)

var (
	extractService  driving.ExtractService
	exportService   driving.ExportService
	historyService  driving.HistoryService
	settingsService driving.SettingsService
)

var (
	bootstrap Bootstrap
	release   func() error

	verbose   bool
	configDir string
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "htmltab",
	Short: "Extract tables from HTML pages",
	Long: `htmltab pulls tables out of HTML documents and writes them as CSV, TSV,
JSON or Markdown.

Sources can be local files, http(s) URLs, or "-" for standard input. When a
page holds several tables, htmltab picks the most relevant one unless told
which to take with --table.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log fetching, extraction and selection details")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.htmltab)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap registers the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	extractService = s.Extract
	exportService = s.Export
	historyService = s.History
	settingsService = s.Settings
}

// Execute runs the root command and releases any services it built.
// Cancelling ctx stops long running commands such as watch and mcp serve.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if release != nil {
		if cerr := release(); cerr != nil && err == nil {
			err = cerr
		}
		release = nil
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipBootstrap] == "true" || bootstrap == nil || extractService != nil {
		return nil
	}

	services, closeFn, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	SetServices(services)
	release = closeFn
	return nil
}

// errNotConfigured reports a missing service.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}

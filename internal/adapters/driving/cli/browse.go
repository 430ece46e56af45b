package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui"
	"github.com/custodia-labs/htmltab/internal/core/domain"
)

var (
	browseTopic         []string
	browseKeepFootnotes bool
	browseDir           string
)

var browseCmd = &cobra.Command{
	Use:   "browse <source>",
	Short: "Browse a page's tables interactively",
	Long: `Open the interactive terminal UI on a source.

Every table found is listed with its size, class, caption and score. Preview
a table and write it to disk without leaving the UI.

Controls:
  ↑/k, ↓/j - Navigate tables
  Enter    - Preview table
  w        - Write table to --dir
  f        - Cycle output format
  r        - Reload source
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringSliceVar(&browseTopic, "topic", nil, "keywords describing the wanted table")
	browseCmd.Flags().BoolVar(&browseKeepFootnotes, "keep-footnotes", false, "keep bracketed footnote markers such as [1]")
	browseCmd.Flags().StringVarP(&browseDir, "dir", "d", "", "directory tables are written to (default output.dir)")
	rootCmd.AddCommand(browseCmd)
}

// newBrowseApp builds the TUI for source from the configured services.
func newBrowseApp(source string) (*tui.App, error) {
	dir := browseDir
	if dir == "" {
		dir = defaultOutputDir()
	}

	return tui.NewApp(
		tui.NewPorts(extractService, exportService),
		source,
		tui.WithExtractOptions(domain.ExtractOptions{
			Topic:         browseTopic,
			KeepFootnotes: browseKeepFootnotes,
		}),
		tui.WithFormat(defaultFormat()),
		tui.WithOutputDir(dir),
	)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newBrowseApp(args[0])
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

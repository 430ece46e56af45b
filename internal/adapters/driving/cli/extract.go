package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// stdoutPath makes --out write to standard output.
const stdoutPath = "-"

var (
	extractTable         int
	extractList          bool
	extractAll           bool
	extractOut           string
	extractDir           string
	extractFormat        string
	extractTopic         []string
	extractKeepFootnotes bool
	extractSave          bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <source>...",
	Short: "Extract tables from HTML",
	Long: `Extract tables from a local file, an http(s) URL, or "-" for standard input.

By default one table is chosen, either the one given with --table or the
highest scoring data table, and written to --out. Use --list to see every
table without writing anything, or --all to write each table to its own file.

Several sources can be given together with --list or --all; they are fetched
concurrently.

Examples:
  htmltab extract page.html --list
  htmltab extract https://en.wikipedia.org/wiki/Go_(programming_language) -o langs.md
  htmltab extract page.html --table 2 --out - --format json
  curl -s https://example.com | htmltab extract - --all --dir tables`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().IntVarP(&extractTable, "table", "t", 0, "index of the table to extract (default: best scoring)")
	extractCmd.Flags().BoolVarP(&extractList, "list", "l", false, "list the tables found and write nothing")
	extractCmd.Flags().BoolVarP(&extractAll, "all", "a", false, "write every table to its own file")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", `output file, "-" for stdout (default table.<ext>)`)
	extractCmd.Flags().StringVarP(&extractDir, "dir", "d", "", "directory for --all (default output.dir)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "",
		"csv, tsv, json or markdown (default: from --out, then output.format)")
	extractCmd.Flags().StringSliceVar(&extractTopic, "topic", nil, "keywords describing the wanted table")
	extractCmd.Flags().BoolVar(&extractKeepFootnotes, "keep-footnotes", false, "keep bracketed footnote markers such as [1]")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "record the extraction in history")
	extractCmd.MarkFlagsMutuallyExclusive("list", "all")
	extractCmd.MarkFlagsMutuallyExclusive("table", "all")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractService == nil {
		return errNotConfigured("extract")
	}
	if !extractList && exportService == nil {
		return errNotConfigured("export")
	}
	if len(args) > 1 && !extractList && !extractAll {
		return fmt.Errorf("%w: several sources need --list or --all", domain.ErrInvalidInput)
	}

	format, err := resolveFormat(extractFormat, extractOut)
	if err != nil {
		return err
	}

	opts := domain.ExtractOptions{
		Topic:         extractTopic,
		KeepFootnotes: extractKeepFootnotes,
		SkipSelection: extractList || extractAll,
		Save:          extractSave,
	}
	if cmd.Flags().Changed("table") {
		opts.Index = domain.IndexOf(extractTable)
	}

	if len(args) == 1 {
		e, err := extractService.Extract(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}
		return emitExtraction(cmd, e, format)
	}

	var errs []error
	for _, r := range extractService.ExtractMany(cmd.Context(), args, opts) {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Location, r.Err))
			continue
		}
		if extractList {
			printHeading(cmd.OutOrStdout(), "== "+r.Location+" ==")
		}
		if err := emitExtraction(cmd, r.Extraction, format); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Location, err))
		}
	}
	return errors.Join(errs...)
}

// emitExtraction lists, writes all, or writes the selected table.
func emitExtraction(cmd *cobra.Command, e *domain.Extraction, format domain.OutputFormat) error {
	switch {
	case extractList:
		printTableList(cmd.OutOrStdout(), e)
		return nil

	case extractAll:
		dir := extractDir
		if dir == "" {
			dir = defaultOutputDir()
		}
		paths, err := exportService.WriteAll(e, dir, format)
		if err != nil {
			return err
		}
		for _, path := range paths {
			cmd.Printf("wrote %s\n", path)
		}
		return nil
	}

	table, ok := e.SelectedTable()
	if !ok {
		return domain.ErrNoTables
	}

	out := extractOut
	if out == "" {
		out = "table." + format.Extension()
	}
	if out == stdoutPath {
		return exportService.Write(cmd.OutOrStdout(), table, format)
	}

	if err := exportService.WriteFile(out, table, format); err != nil {
		return err
	}
	cmd.Printf("wrote table %d (%d rows) to %s\n", e.Selected, len(table.Rows), out)
	return nil
}

// resolveFormat picks the output format from the flag, then the output
// file extension, then the configured default.
func resolveFormat(flag, out string) (domain.OutputFormat, error) {
	if flag != "" {
		return domain.ParseOutputFormat(flag)
	}
	if out != "" && out != stdoutPath {
		if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" {
			if format, err := domain.ParseOutputFormat(ext); err == nil {
				return format, nil
			}
		}
	}
	return defaultFormat(), nil
}

func defaultFormat() domain.OutputFormat {
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.Output.Format.IsValid() {
			return settings.Output.Format
		}
	}
	return domain.FormatCSV
}

func defaultOutputDir() string {
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.Output.Dir != "" {
			return settings.Output.Dir
		}
	}
	return "."
}

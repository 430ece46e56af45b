package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

var (
	historyLimit  int
	historyJSON   bool
	historyTable  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved extractions",
	Long: `List, show and delete extractions saved with --save or with
history.enabled set.`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved extractions",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved extraction",
	Long: `Show the tables of a saved extraction.

With --table the cells of that table are written to standard output in the
chosen format.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved extraction",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, historyListCmd} {
		c.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of extractions")
		c.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	}
	historyShowCmd.Flags().IntVarP(&historyTable, "table", "t", 0, "write the cells of this table")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "format for --table (default output.format)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

// historyEntry is the JSON form of a history listing entry.
type historyEntry struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Kind      string    `json:"kind"`
	Tables    int       `json:"tables"`
	Selected  int       `json:"selected"`
	CreatedAt time.Time `json:"created_at"`
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errNotConfigured("history")
	}

	summaries, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if historyJSON {
		entries := make([]historyEntry, len(summaries))
		for i, s := range summaries {
			entries[i] = historyEntry{
				ID:        s.ID,
				Source:    s.Source.Location,
				Kind:      string(s.Source.Kind),
				Tables:    s.TableCount,
				Selected:  s.Selected,
				CreatedAt: s.CreatedAt,
			}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(summaries) == 0 {
		cmd.Println("No saved extractions.")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, s := range summaries {
		fmt.Fprintf(out, "%s  %s  %2d tables  %s\n",
			s.ID, s.CreatedAt.Local().Format(time.DateTime), s.TableCount, s.Source.Location)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errNotConfigured("history")
	}

	e, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get extraction: %w", err)
	}

	if !cmd.Flags().Changed("table") {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:      %s\n", e.ID)
		fmt.Fprintf(out, "Source:  %s\n", e.Source.Location)
		fmt.Fprintf(out, "Created: %s\n", e.CreatedAt.Local().Format(time.DateTime))
		fmt.Fprintln(out)
		printTableList(out, e)
		return nil
	}

	if exportService == nil {
		return errNotConfigured("export")
	}
	if historyTable < 0 || historyTable >= len(e.Tables) {
		return &domain.IndexOutOfRangeError{Index: historyTable, Count: len(e.Tables)}
	}
	format, err := resolveFormat(historyFormat, "")
	if err != nil {
		return err
	}
	return exportService.Write(cmd.OutOrStdout(), e.Tables[historyTable], format)
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errNotConfigured("history")
	}

	if err := historyService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete extraction: %w", err)
	}
	cmd.Printf("deleted %s\n", args[0])
	return nil
}

package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

var (
	watchTopic         []string
	watchKeepFootnotes bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "List a file's tables every time it changes",
	Long: `Watch a local HTML file and print its table list on every change.

Useful while editing a page or while another program rewrites it. Stop with
ctrl+c.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchTopic, "topic", nil, "keywords describing the wanted table")
	watchCmd.Flags().BoolVar(&watchKeepFootnotes, "keep-footnotes", false, "keep bracketed footnote markers such as [1]")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if extractService == nil {
		return errNotConfigured("extract")
	}

	ctx := cmd.Context()
	opts := domain.ExtractOptions{
		Topic:         watchTopic,
		KeepFootnotes: watchKeepFootnotes,
		SkipSelection: true,
	}

	extractions, errs, err := extractService.Watch(ctx, args[0], opts)
	if err != nil {
		return err
	}

	e, err := extractService.Extract(ctx, args[0], opts)
	switch {
	case err == nil:
		printTableList(cmd.OutOrStdout(), e)
	case errors.Is(err, domain.ErrNoTables):
		cmd.Println("no tables yet")
	default:
		cmd.PrintErrln("error:", err)
	}
	cmd.Printf("watching %s (ctrl+c to stop)\n", args[0])

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-extractions:
			if !ok {
				return nil
			}
			printHeading(cmd.OutOrStdout(), "== "+time.Now().Format(time.TimeOnly)+" ==")
			if len(e.Tables) == 0 {
				cmd.Println("no tables")
				continue
			}
			printTableList(cmd.OutOrStdout(), e)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			cmd.PrintErrln("error:", err)
		}
	}
}

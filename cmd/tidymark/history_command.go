package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently classified bookmarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer history.Close()

			records, err := history.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No classification history yet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.CreatedAt.Local().Format("2006-01-02 15:04"),
					record.Category,
					formatConfidence(record.Confidence),
					truncate(record.Title, 40),
					truncate(record.URL, 60),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Category", "Confidence", "Title", "URL"},
				rows, 3))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 30, "Maximum entries to show")
	cmd.AddCommand(newHistoryRunsCommand(ctx))
	return cmd
}

func newHistoryRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show past classification runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer history.Close()

			runs, err := history.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				duration := "-"
				if !run.FinishedAt.IsZero() {
					duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					shortRunID(run.ID),
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Classified),
					strconv.Itoa(run.Unclassified),
					strconv.Itoa(run.CacheHits),
					duration,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Run", "Total", "Classified", "Unclassified", "Cache hits", "Duration"},
				rows, 3, 4, 5, 6))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to show")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens by runes so multibyte titles are never split mid-character.
func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tidymark/internal/batch"
	"tidymark/internal/export"
	"tidymark/internal/importer"
	"tidymark/internal/store"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var format string
	var workers int
	var noSave bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Classify a browser bookmark export",
		Long: "Import parses a Netscape bookmark HTML export, classifies every entry,\n" +
			"records the run in history, and writes the organized collection.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if format != "json" && format != "markdown" {
				return fmt.Errorf("unknown output format %q (want json or markdown)", format)
			}

			bookmarks, err := importer.ParseFile(args[0])
			if err != nil {
				return err
			}
			if len(bookmarks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks found in export.")
				return nil
			}

			var history *store.Store
			if !noSave {
				history, err = ctx.openStore()
				if err != nil {
					return err
				}
				defer history.Close()
			}

			classifier, err := ctx.buildClassifier(cmd.Context(), history)
			if err != nil {
				return err
			}

			if workers <= 0 {
				workers = cfg.Batch.Workers
			}
			var progressWriter io.Writer
			if stderrIsTerminal() {
				progressWriter = os.Stderr
			}
			runner := batch.NewRunner(classifier, batch.Options{
				Workers:  workers,
				Store:    history,
				Progress: progressWriter,
				Logger:   logger,
			})

			inputs := make([]batch.Bookmark, 0, len(bookmarks))
			for _, bookmark := range bookmarks {
				inputs = append(inputs, batch.Bookmark{URL: bookmark.URL, Title: bookmark.Title})
			}

			summary, err := runner.Run(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputPath != "" {
				file, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				out = file
			}

			if format == "json" {
				err = export.WriteJSON(out, summary.Results)
			} else {
				err = export.WriteMarkdown(out, summary.Results)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(),
				"Classified %d bookmarks in %s: %d categorized, %d unclassified (cache hits: %d)\n",
				summary.Total, summary.Duration.Round(summaryRounding), summary.Classified,
				summary.Unclassified, summary.CacheHits)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write results to a file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format (json or markdown)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent classification workers")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Skip recording the run in history")
	return cmd
}

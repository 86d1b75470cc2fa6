package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tidymark/internal/classify"
	"tidymark/internal/export"
	"tidymark/internal/store"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var explain bool
	var threshold float64
	var noML bool
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "classify URL [TITLE]",
		Short: "Classify a single bookmark",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") {
				cfg.AI.ConfidenceThreshold = threshold
			}
			if noML {
				cfg.AI.UseBayes = false
				cfg.AI.UseSemantic = false
				cfg.AI.UseProfile = false
				cfg.AI.UseLLM = false
			}

			var history *store.Store
			if !noHistory && !noML {
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

			url := args[0]
			title := ""
			if len(args) > 1 {
				title = args[1]
			}

			result, err := classifier.Classify(cmd.Context(), url, title)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return export.WriteJSON(out, []classify.Result{result})
			}

			pairs := [][2]string{
				{"URL", result.URL},
				{"Category", result.Category},
			}
			if result.Subject != "" {
				pairs = append(pairs, [2]string{"Subject", result.Subject})
			}
			if result.ResourceType != "" {
				pairs = append(pairs, [2]string{"Resource type", result.ResourceType})
			}
			if result.Subcategory != "" {
				pairs = append(pairs, [2]string{"Subcategory", result.Subcategory})
			}
			pairs = append(pairs,
				[2]string{"Confidence", formatConfidence(result.Confidence)},
				[2]string{"Methods", strings.Join(result.Methods, ", ")},
				[2]string{"Duration", result.Duration.String()},
			)
			if len(result.Alternatives) > 0 {
				alt := result.Alternatives[0]
				pairs = append(pairs, [2]string{"Next best",
					fmt.Sprintf("%s (%s)", alt.Category, formatConfidence(alt.Confidence))})
			}
			fmt.Fprintln(out, renderKeyValue(pairs))

			if explain {
				fmt.Fprintln(out, "Reasoning:")
				for _, line := range result.Reasoning {
					fmt.Fprintf(out, "  - %s\n", line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the result as JSON")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show per-method reasoning")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Override the confidence threshold")
	cmd.Flags().BoolVar(&noML, "no-ml", false, "Use only the rule engine")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip loading classification history")
	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tidymark/internal/taxonomy"
)

func newTaxonomyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect the controlled vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(cfg.Taxonomy.Subjects))
			for _, entry := range cfg.Taxonomy.Subjects {
				rows = append(rows, []string{entry.Preferred, strings.Join(entry.Variants, ", ")})
			}
			fmt.Fprintln(out, "Subjects:")
			fmt.Fprintln(out, renderTable([]string{"Preferred", "Variants"}, rows))

			rows = rows[:0]
			for _, entry := range cfg.Taxonomy.ResourceTypes {
				rows = append(rows, []string{entry.Preferred, strings.Join(entry.Variants, ", ")})
			}
			fmt.Fprintln(out, "Resource types:")
			fmt.Fprintln(out, renderTable([]string{"Preferred", "Variants"}, rows))
			return nil
		},
	}

	cmd.AddCommand(newTaxonomyNormalizeCommand(ctx))
	return cmd
}

func newTaxonomyNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize TEXT...",
		Short: "Show the canonical subject for free-form category text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			standardizer := taxonomy.NewStandardizer(cfg.Taxonomy)
			out := cmd.OutOrStdout()
			for _, arg := range args {
				subject := standardizer.NormalizeSubject(arg)
				if resourceType := standardizer.NormalizeResourceType(arg); resourceType != "" {
					fmt.Fprintf(out, "%s -> subject %q, resource type %q\n", arg, subject, resourceType)
					continue
				}
				fmt.Fprintf(out, "%s -> subject %q\n", arg, subject)
			}
			return nil
		},
	}
}

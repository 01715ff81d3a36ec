package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/convert"
	"github.com/tjirsch/polyrc/internal/formats"
)

func newPushFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push-format",
		Short: "Read local format rules into the store",
		Long: `Read rules from a dialect tree, convert them to the canonical
representation, and save them into the store (auto-commits).

Examples:
  polyrc push-format --format cursor --project myapp
  polyrc push-format --format claude --project myapp --prune`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			project, _ := cmd.Flags().GetString("project")
			scopeStr, _ := cmd.Flags().GetString("scope")
			input, _ := cmd.Flags().GetString("input")
			prune, _ := cmd.Flags().GetBool("prune")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			jsonOut, _ := cmd.Flags().GetBool("json")

			from, err := formats.Lookup(formatName)
			if err != nil {
				return err
			}
			scope, err := parseScopeFlag(scopeStr)
			if err != nil {
				return err
			}
			s, err := openStore(cmd)
			if err != nil {
				return err
			}

			res, err := convert.Push(cmd.Context(), s, from, input, project, scope, prune, dryRun)
			if err != nil {
				return err
			}
			if res.Preview != nil {
				return reportPreview(cmd, res.Preview)
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d rules from %s under %s\n", len(res.Stored), from.Name(), project)
			for _, r := range res.Pruned {
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %s\n", r.FilenameStem())
			}
			return nil
		},
	}

	cmd.Flags().String("format", "", "Format to read from (cursor, windsurf, copilot, claude, gemini, antigravity)")
	cmd.Flags().String("project", "", "Project name to store rules under")
	cmd.Flags().String("scope", "", "Filter by scope: user, project, or path")
	cmd.Flags().String("input", ".", "Source project root directory")
	cmd.Flags().Bool("prune", false, "Remove store rules absent from the source")
	cmd.Flags().Bool("dry-run", false, "Print what would be stored without touching the store")
	cmd.MarkFlagRequired("format")
	cmd.MarkFlagRequired("project")
	return cmd
}

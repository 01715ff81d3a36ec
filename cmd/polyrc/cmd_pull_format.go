package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/convert"
	"github.com/tjirsch/polyrc/internal/formats"
)

func newPullFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull-format",
		Short: "Write stored rules out as a local format",
		Long: `Load rules from the store and render them in a dialect's native
layout.

Examples:
  polyrc pull-format --format claude --project myapp
  polyrc pull-format --format windsurf --project myapp --output ../other`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			project, _ := cmd.Flags().GetString("project")
			scopeStr, _ := cmd.Flags().GetString("scope")
			output, _ := cmd.Flags().GetString("output")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			to, err := formats.Lookup(formatName)
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

			preview, err := convert.Pull(s, to, output, project, scope, "", dryRun)
			if err != nil {
				return err
			}
			if preview != nil {
				return reportPreview(cmd, preview)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s rules for %s under %s\n", to.Name(), project, output)
			return nil
		},
	}

	cmd.Flags().String("format", "", "Format to write (cursor, windsurf, copilot, claude, gemini, antigravity)")
	cmd.Flags().String("project", "", "Project name to load rules from")
	cmd.Flags().String("scope", "", "Filter by scope: user, project, or path")
	cmd.Flags().String("output", ".", "Target project root directory")
	cmd.Flags().Bool("dry-run", false, "Print what would be written without modifying local files")
	cmd.MarkFlagRequired("format")
	cmd.MarkFlagRequired("project")
	return cmd
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/convert"
	"github.com/tjirsch/polyrc/internal/formats"
	"github.com/tjirsch/polyrc/internal/models"
	"github.com/tjirsch/polyrc/internal/watch"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert configuration from one format to another",
		Long: `Convert rules between dialects.

Without --project the conversion is direct and stateless. With --project
the rules go through the store (push then pull), which preserves fields
the target dialect cannot represent natively.

Examples:
  polyrc convert --from cursor --to claude
  polyrc convert --from cursor --to gemini --input . --output ../other
  polyrc convert --from cursor --to claude --project myapp
  polyrc convert --from cursor --to claude --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromName, _ := cmd.Flags().GetString("from")
			toName, _ := cmd.Flags().GetString("to")
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			project, _ := cmd.Flags().GetString("project")
			scopeStr, _ := cmd.Flags().GetString("scope")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			prune, _ := cmd.Flags().GetBool("prune")
			watchMode, _ := cmd.Flags().GetBool("watch")

			from, err := formats.Lookup(fromName)
			if err != nil {
				return err
			}
			to, err := formats.Lookup(toName)
			if err != nil {
				return err
			}
			scope, err := parseScopeFlag(scopeStr)
			if err != nil {
				return err
			}

			run := func(ctx context.Context) error {
				var preview *convert.Preview
				if project != "" {
					s, err := openStore(cmd)
					if err != nil {
						return err
					}
					preview, err = convert.ViaStore(ctx, s, from, to, input, output, project, scope, prune, dryRun)
					if err != nil {
						return err
					}
				} else {
					preview, err = convert.Direct(from, to, input, output, scope, dryRun)
					if err != nil {
						return err
					}
				}
				if preview != nil {
					return reportPreview(cmd, preview)
				}
				return nil
			}

			if watchMode {
				if dryRun {
					return fmt.Errorf("--watch and --dry-run cannot be combined")
				}
				if err := run(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "watching %s for changes (ctrl-c to stop)\n", input)
				return watch.Watch(cmd.Context(), watch.Config{Root: input, Run: run})
			}
			return run(cmd.Context())
		},
	}

	cmd.Flags().String("from", "", "Source format (cursor, windsurf, copilot, claude, gemini, antigravity)")
	cmd.Flags().String("to", "", "Target format")
	cmd.Flags().String("input", ".", "Source project root directory")
	cmd.Flags().String("output", ".", "Target project root directory")
	cmd.Flags().String("project", "", "Project name in the store; when set, conversion goes through the store")
	cmd.Flags().String("scope", "", "Filter by scope: user, project, or path")
	cmd.Flags().Bool("dry-run", false, "Print what would be written without creating files")
	cmd.Flags().Bool("prune", false, "With --project, remove store rules absent from the source")
	cmd.Flags().Bool("watch", false, "Re-run the conversion when the source changes")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func parseScopeFlag(s string) (models.Scope, error) {
	if s == "" {
		return "", nil
	}
	return models.ParseScope(s)
}

func reportPreview(cmd *cobra.Command, p *convert.Preview) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "dry run: would write %d rules as %s under %s\n", len(p.Rules), p.Format, p.Root)
	for _, r := range p.Rules {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s (scope=%s activation=%s)\n", r.FilenameStem(), r.Scope, r.Activation)
	}
	return nil
}

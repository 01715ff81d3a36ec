package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/activation"
	"github.com/tjirsch/polyrc/internal/store"
)

func newActiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "active <file>",
		Short: "Show the rules that apply to a file",
		Long: `List the stored rules that an assistant would surface for the given
file: every always rule plus glob rules whose patterns match.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _ := cmd.Flags().GetString("project")
			jsonOut, _ := cmd.Flags().GetBool("json")

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			rules, err := s.GetAll(project, "", "")
			if err != nil {
				return err
			}
			if project != "" && project != store.UserProject {
				user, err := s.GetAll(store.UserProject, "", "")
				if err != nil {
					return err
				}
				rules = append(rules, user...)
			}

			active := activation.Active(rules, args[0])
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"active": active, "count": len(active)})
			}
			if len(active) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no rules apply to %s\n", args[0])
				return nil
			}
			for _, r := range active {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s project=%s activation=%s\n", r.FilenameStem(), r.Project, r.Activation)
			}
			return nil
		},
	}

	cmd.Flags().String("project", "", "Project whose rules to consider (user-global rules are always included)")
	return cmd
}

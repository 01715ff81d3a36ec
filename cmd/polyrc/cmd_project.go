package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects in the store",
	}
	cmd.AddCommand(newProjectListCmd(), newProjectRenameCmd())
	return cmd
}

func newProjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			projects, err := s.ListProjects()
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"projects": projects})
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no projects in the store")
				return nil
			}
			for _, p := range projects {
				rules, err := s.GetAll(p, "", "")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d rules\n", p, len(rules))
			}
			return nil
		},
	}
}

func newProjectRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a project in the store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := s.RenameProject(args[0], args[1]); err != nil {
				return err
			}
			if _, err := s.Commit(cmd.Context(), fmt.Sprintf("polyrc: rename project %s to %s", args[0], args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

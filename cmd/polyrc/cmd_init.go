package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/gitx"
	"github.com/tjirsch/polyrc/internal/store"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the local rule store",
		Long: `Create the git-backed rule store.

With --remote the remote is configured for push-store / pull-store;
without it the store is local only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, _ := cmd.Flags().GetString("remote")

			path, err := storePath(cmd)
			if err != nil {
				return err
			}
			git := gitx.NewExecClient()
			if remote != "" {
				// Clone first so an existing remote store seeds the local copy.
				if err := git.Clone(cmd.Context(), remote, path); err != nil {
					return fmt.Errorf("cloning remote store: %w", err)
				}
			}
			s, err := store.Init(cmd.Context(), path, remote, git)
			if err != nil {
				return err
			}
			if _, err := s.Commit(cmd.Context(), "polyrc: initialize store"); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized store at %s\n", s.Root)
			if remote != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "remote: %s\n", remote)
			}
			return nil
		},
	}

	cmd.Flags().String("remote", "", "Git remote URL to clone and sync against")
	return cmd
}

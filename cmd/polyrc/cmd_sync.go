package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/gitx"
	"github.com/tjirsch/polyrc/internal/sync"
)

func newPushStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push-store",
		Short: "Push local store commits to the remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			res, err := sync.PushStore(cmd.Context(), s, message)
			if err != nil {
				return describeLock(err)
			}
			if res.Committed {
				fmt.Fprintln(cmd.OutOrStdout(), "committed local changes")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pushed store to remote")
			return nil
		},
	}
	cmd.Flags().String("message", "", "Commit message for uncommitted changes")
	return cmd
}

func newPullStoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull-store",
		Short: "Pull remote store changes, merging rules when histories diverged",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			res, err := sync.PullStore(cmd.Context(), s)
			if err != nil {
				return describeLock(err)
			}

			out := cmd.OutOrStdout()
			switch {
			case res.Merged:
				fmt.Fprintln(out, "merged remote changes")
			case res.FastForward:
				fmt.Fprintln(out, "fast-forwarded to remote")
			default:
				fmt.Fprintln(out, "store is up to date")
			}
			// Every conflict resolution must reach the user.
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}
}

// describeLock adds retry advice to lock contention failures.
func describeLock(err error) error {
	var lock *gitx.LockError
	if errors.As(err, &lock) {
		return fmt.Errorf("%w\nanother polyrc invocation may be running; retry in a moment", lock)
	}
	return err
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/discover"
)

func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover installed user-level configs",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			jsonOut, _ := cmd.Flags().GetBool("json")

			locs, err := discover.UserLocations(formatName)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), locs)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "User-level configs:")
			current := ""
			for _, loc := range locs {
				if loc.Format != current {
					current = loc.Format
					fmt.Fprintf(out, "\n  %s:\n", current)
				}
				switch loc.Kind {
				case discover.KindWebUI:
					fmt.Fprintf(out, "    (web UI) %s\n", loc.Note)
				default:
					status := "not found"
					if loc.Found {
						status = "found"
					}
					fmt.Fprintf(out, "    [%s] %s\n", status, loc.Path)
					if loc.Note != "" {
						fmt.Fprintf(out, "             %s\n", loc.Note)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().String("format", "", "Only scan for this format")
	return cmd
}

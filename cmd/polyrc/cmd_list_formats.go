package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/formats"
)

func newListFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-formats",
		Short: "List all supported formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				type entry struct {
					Name        string `json:"name"`
					Description string `json:"description"`
				}
				var out []entry
				for _, a := range formats.All() {
					out = append(out, entry{Name: a.Name(), Description: a.Description()})
				}
				return printJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Supported formats:")
			for _, a := range formats.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %s\n", a.Name(), a.Description())
			}
			return nil
		},
	}
}

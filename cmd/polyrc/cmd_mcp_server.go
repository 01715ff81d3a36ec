package main

import (
	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Serve the rule store to MCP clients.

Exposes the polyrc_rules, polyrc_projects, and polyrc_active tools and a
polyrc://rules/{project} resource. Configure your agent to launch
"polyrc mcp-server" as a stdio server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			server, err := mcp.NewServer(&mcp.Config{Name: "polyrc", Version: version, Store: s})
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server provides tools for listing habits, toggling them and reading reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.config.MCP.Enabled {
			return fmt.Errorf("the MCP server is disabled; set mcp.enabled = true to use it")
		}

		// stdout carries the protocol.
		fmt.Fprintln(os.Stderr, "🚀 Starting MCP server on stdio (Ctrl+C to stop)")

		ctx := cmd.Context()
		serveMetrics(ctx)

		server := mcp.NewServer(app.state, Version)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/htmltab/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHTTP bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list and
extract tables.

Tools:
  list_tables    - summarise every table of a page
  extract_table  - return one table as CSV, TSV, JSON or Markdown

When history is available, saved extractions are also exposed as resources
under htmltab://history.

By default, the server communicates over stdio using JSON-RPC. Use --port, or
--http to pick a free port, to serve over HTTP instead.

Examples:
  # Stdio mode (default)
  htmltab mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  htmltab mcp serve --port 8080
  htmltab mcp serve --http

Client configuration:
  {
    "mcpServers": {
      "htmltab": {
        "command": "/path/to/htmltab",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolVar(&mcpHTTP, "http", false, "serve over HTTP on the first free port from 8080")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Extract: extractService,
		Export:  exportService,
		History: historyService,
	})
	if err != nil {
		return err
	}

	port := mcpPort
	if port == 0 && mcpHTTP {
		port, err = mcp.FindAvailablePort(mcp.DefaultPortStart, mcp.DefaultPortEnd)
		if err != nil {
			return fmt.Errorf("finding port: %w", err)
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckqa/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask questions
about ingested documents.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Tools: ask, retrieve, ingest, list_documents. Calls without a session_id
use the --session flag.

Examples:
  # Stdio mode (default, for desktop assistants)
  deckqa mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  deckqa mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "deckqa": {
        "command": "/path/to/deckqa",
        "args": ["mcp", "serve", "--session", "board"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		QA:             qaService,
		Ingest:         ingestService,
		DefaultSession: sessionID,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

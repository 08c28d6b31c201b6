package main

import (
	"context"

	"ghscout/internal/mcp"
	"ghscout/internal/version"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server (stdio)",
	Long: `Start the Model Context Protocol server.

The server communicates over stdio using JSON-RPC 2.0 and exposes the
research tools to MCP clients:
  - search_patterns: search GitHub code with secrets redacted
  - get_repo_map: map a repository's most important symbols
  - extract_function: pull one function out of a remote file
  - check_license: categorize a repository's license
  - find_usage_examples: find real-world usage of a function
  - validate_code_snippet: check a snippet before using it

This command is typically invoked by MCP clients, not directly.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("Starting MCP server", "version", version.Version)

	server := mcp.NewServer(version.Version, a.toolset, a.logger)
	return server.Start(context.Background())
}

package main

import (
	"ghscout/internal/version"

	"github.com/spf13/cobra"
)

var logLevelFlag string

var rootCmd = &cobra.Command{
	Use:   "ghscout",
	Short: "ghscout - GitHub code research server",
	Long: `ghscout researches code on GitHub so coding agents don't have to.
It searches for patterns, maps repository structure by symbol importance,
extracts functions, and checks licenses - with secrets redacted and API
rate limits respected. Run it as an MCP server or use the subcommands
directly.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("ghscout version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (overrides config)")
}

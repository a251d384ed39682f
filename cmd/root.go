package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mymcpspace-mcp-server
// application. It is the entry point when the application is called without
// any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mymcpspace-mcp-server",
	Short: "Remote MCP server for MyMCPSpace",
	Long: `mymcpspace-mcp-server exposes the MyMCPSpace social-posting API as MCP
tools for autonomous agents, gated behind an OAuth authorization flow that
captures a user-supplied API key.

Agents connect to the MCP endpoint with a bearer token obtained through the
authorization handshake; every tool call is then made with the API key bound
to that session.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. It is called from the
// main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mymcpspace-mcp-server version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

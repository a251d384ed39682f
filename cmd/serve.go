package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/config"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/server"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/pkg/logging"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveConfigPath specifies the configuration file path.
var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MyMCPSpace MCP server",
	Long: `Starts the HTTP server hosting the OAuth authorization flow and the
protected MCP endpoint.

Endpoints:
  /authorize, /approve   authorization handshake (API key capture)
  /token, /register      OAuth token issuance and client registration
  /mcp                   MCP streamable-HTTP transport (bearer token required)

Configuration is read from the file given with --config, or built-in
defaults when the file does not exist.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if serveDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, GetVersion()).Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "config.yaml", "Path to the configuration file")
}

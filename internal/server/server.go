package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/config"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/mcpspace"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/oauth"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/tools"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/pkg/logging"
)

const (
	serverName = "mymcpspace"

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server hosts the MCP tool surface behind the authorization flow. It owns
// the HTTP listener, the OAuth provider and the MCP server instance.
type Server struct {
	cfg        config.Config
	provider   *oauth.Provider
	mcpServer  *mcpserver.MCPServer
	httpServer *http.Server
}

// New assembles the server from configuration.
func New(cfg config.Config, version string) *Server {
	provider := oauth.NewProvider(cfg.Issuer(),
		oauth.WithCodeTTL(cfg.OAuth.CodeTTL.Std()),
		oauth.WithTokenTTL(cfg.OAuth.TokenTTL.Std()),
	)

	for _, static := range cfg.OAuth.Clients {
		provider.RegisterClient(&oauth.Client{
			ClientID:     static.ClientID,
			ClientName:   static.Name,
			RedirectURIs: static.RedirectURIs,
			Public:       true,
		})
		logging.Info("Server", "Registered static client %s", static.ClientID)
	}

	clientOpts := []mcpspace.ClientOption{
		mcpspace.WithBaseURL(cfg.API.BaseURL),
		mcpspace.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout.Std()}),
	}

	mcp := mcpserver.NewMCPServer(
		serverName,
		version,
		mcpserver.WithToolCapabilities(true),
	)
	mcp.AddTools(tools.NewRegistry(clientOpts...).Tools()...)

	s := &Server{
		cfg:       cfg,
		provider:  provider,
		mcpServer: mcp,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           s.buildMux(clientOpts),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// buildMux routes the OAuth endpoints, the authorization flow and the
// protected MCP transport.
func (s *Server) buildMux(clientOpts []mcpspace.ClientOption) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Authorization server metadata (RFC 8414)
	mux.HandleFunc("/.well-known/oauth-authorization-server", s.provider.ServeMetadata)

	// OAuth engine endpoints
	mux.HandleFunc("/token", s.provider.ServeToken)
	mux.HandleFunc("/register", s.provider.ServeClientRegistration)

	// Authorization flow
	authHandler := NewAuthHandler(s.provider, clientOpts...)
	mux.HandleFunc("/authorize", authHandler.HandleAuthorize)
	mux.HandleFunc("/approve", authHandler.HandleApprove)

	// Protected MCP transport. The legacy /sse path is kept for clients
	// that still default to it.
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer)
	protected := requireSession(s.provider, s.cfg.Issuer(), streamable)
	mux.Handle("/mcp", protected)
	mux.Handle("/sse", protected)

	return mux
}

// Run starts the HTTP server and blocks until the context is canceled or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server", "Listening on %s (issuer %s)", s.cfg.ListenAddr(), s.cfg.Issuer())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logging.Info("Server", "Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.provider.Stop()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Handler exposes the assembled HTTP handler. Used by tests to exercise the
// full routing without a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Provider exposes the authorization engine. Used by tests to seed clients
// and grants.
func (s *Server) Provider() *oauth.Provider {
	return s.provider
}

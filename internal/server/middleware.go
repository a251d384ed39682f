package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/oauth"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/pkg/logging"
)

// requireSession wraps an MCP handler with bearer-token authentication.
// Valid tokens resolve to the session bound at authorization time; the
// session rides the request context into the tool handlers.
func requireSession(provider *oauth.Provider, issuer string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			sendAuthChallenge(w, issuer, "")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		session, ok := provider.SessionForToken(token)
		if !ok {
			logging.Debug("Server", "Rejected request with invalid or expired token %s", logging.TruncateToken(token))
			sendAuthChallenge(w, issuer, "invalid_token")
			return
		}

		next.ServeHTTP(w, r.WithContext(oauth.ContextWithSession(r.Context(), session)))
	})
}

// sendAuthChallenge writes a 401 with a WWW-Authenticate challenge pointing
// the client at the authorization server metadata.
func sendAuthChallenge(w http.ResponseWriter, issuer, errorCode string) {
	challenge := fmt.Sprintf("Bearer realm=%q", issuer)
	if errorCode != "" {
		challenge += fmt.Sprintf(", error=%q", errorCode)
	}
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

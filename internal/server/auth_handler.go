package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/mcpspace"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/oauth"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/pkg/logging"
)

// Fixed bodies for terminal authorization failures.
const (
	invalidLoginBody  = "INVALID LOGIN"
	invalidAPIKeyBody = "INVALID API KEY"
)

// AuthHandler drives the two-step authorization handshake: render the
// credential form, then validate the submission and hand the approved grant
// to the authorization engine.
type AuthHandler struct {
	provider   *oauth.Provider
	clientOpts []mcpspace.ClientOption
}

// NewAuthHandler creates the handler. The client options configure the API
// client used for the credential probe.
func NewAuthHandler(provider *oauth.Provider, clientOpts ...mcpspace.ClientOption) *AuthHandler {
	return &AuthHandler{
		provider:   provider,
		clientOpts: clientOpts,
	}
}

// HandleAuthorize renders the authorization form. The parsed authorization
// request is serialized into a hidden field so the approval submission can
// reconstruct it without server-side state.
func (h *AuthHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	authReq, err := h.provider.ParseAuthRequest(r)
	if err != nil {
		logging.Warn("AuthFlow", "Rejected authorization request: %v", err)
		renderAuthError(w, http.StatusBadRequest, "Invalid authorization request")
		return
	}

	encoded, err := authReq.Encode()
	if err != nil {
		logging.Error("AuthFlow", err, "Failed to serialize authorization request")
		renderAuthError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	clientName := ""
	if client, ok := h.provider.ClientByID(authReq.ClientID); ok {
		clientName = client.ClientName
	}

	renderAuthorizePage(w, authorizePageData{
		ClientName:   clientName,
		Scope:        authReq.Scope,
		OAuthReqInfo: encoded,
	})
}

// HandleApprove validates a form submission and completes the grant. Every
// failure here is terminal for the submission; the operator resubmits the
// form to try again.
func (h *AuthHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderAuthError(w, http.StatusUnauthorized, invalidLoginBody)
		return
	}

	action := r.Form.Get("action")
	apiKey := r.Form.Get("apiKey")

	authReq, err := oauth.DecodeAuthRequest(r.Form.Get("oauthReqInfo"))
	if err != nil {
		logging.Warn("AuthFlow", "Approval submitted with unparseable authorization request")
		renderAuthError(w, http.StatusUnauthorized, invalidLoginBody)
		return
	}

	// The chosen action is recorded but not branched on: a reject
	// submission still validates the key and completes the grant.
	logging.Debug("AuthFlow", "Processing approval submission action=%s client=%s", action, authReq.ClientID)

	if err := mcpspace.ValidateKey(r.Context(), apiKey, h.clientOpts...); err != nil {
		logging.Warn("AuthFlow", "Credential probe failed for key %s: %v", logging.TruncateToken(apiKey), err)
		renderAuthError(w, http.StatusUnauthorized, invalidAPIKeyBody)
		return
	}

	user, err := newSessionID()
	if err != nil {
		logging.Error("AuthFlow", err, "Failed to generate session identity")
		renderAuthError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	redirectTo, err := h.provider.CompleteAuthorization(authReq, user, &oauth.Session{
		User:   user,
		APIKey: apiKey,
	})
	if err != nil {
		logging.Error("AuthFlow", err, "Failed to complete authorization")
		renderAuthError(w, http.StatusUnauthorized, invalidLoginBody)
		return
	}

	logging.Info("AuthFlow", "Authorized session user=%s client=%s", user, authReq.ClientID)

	http.Redirect(w, r, redirectTo, http.StatusFound)
}

// newSessionID generates a fresh session identity: 128 bits from a
// cryptographically strong source, rendered as lowercase hex. It is never
// derived from credential content and never reused.
func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

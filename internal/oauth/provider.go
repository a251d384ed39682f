package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaw9c/remote-mymcpspace-mcp-server/pkg/logging"
)

const (
	// DefaultCodeTTL is how long an authorization code stays exchangeable.
	DefaultCodeTTL = 5 * time.Minute

	// DefaultTokenTTL is the lifetime of issued access tokens.
	DefaultTokenTTL = time.Hour
)

// ErrInvalidAuthRequest is returned when an authorization request is
// missing required parameters or references an unknown client.
var ErrInvalidAuthRequest = errors.New("invalid authorization request")

// Provider implements the OAuth authorization engine: it parses
// authorization requests, completes approved ones by minting single-use
// codes, exchanges codes for bearer tokens at the token endpoint, and
// registers clients dynamically. Tokens resolve to the Session bound at
// approval time.
type Provider struct {
	issuer   string
	store    *Store
	codeTTL  time.Duration
	tokenTTL time.Duration
}

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

// WithCodeTTL overrides the authorization code lifetime.
func WithCodeTTL(ttl time.Duration) ProviderOption {
	return func(p *Provider) {
		p.codeTTL = ttl
	}
}

// WithTokenTTL overrides the access token lifetime.
func WithTokenTTL(ttl time.Duration) ProviderOption {
	return func(p *Provider) {
		p.tokenTTL = ttl
	}
}

// NewProvider creates an authorization engine rooted at the given public
// issuer URL.
func NewProvider(issuer string, opts ...ProviderOption) *Provider {
	p := &Provider{
		issuer:   strings.TrimSuffix(issuer, "/"),
		store:    NewStore(),
		codeTTL:  DefaultCodeTTL,
		tokenTTL: DefaultTokenTTL,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Stop releases the provider's background resources.
func (p *Provider) Stop() {
	p.store.Stop()
}

// ParseAuthRequest extracts and validates an authorization request from the
// query parameters of an authorize-page request.
func (p *Provider) ParseAuthRequest(r *http.Request) (*AuthRequest, error) {
	q := r.URL.Query()

	req := &AuthRequest{
		ResponseType:        q.Get("response_type"),
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	}

	if req.ResponseType != "code" {
		return nil, fmt.Errorf("%w: unsupported response_type %q", ErrInvalidAuthRequest, req.ResponseType)
	}
	if req.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidAuthRequest)
	}
	if req.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect_uri is required", ErrInvalidAuthRequest)
	}

	client, ok := p.store.GetClient(req.ClientID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown client %q", ErrInvalidAuthRequest, req.ClientID)
	}
	if !client.RedirectURIAllowed(req.RedirectURI) {
		return nil, fmt.Errorf("%w: redirect_uri not registered for client", ErrInvalidAuthRequest)
	}

	if req.CodeChallenge != "" && req.CodeChallengeMethod != "S256" {
		return nil, fmt.Errorf("%w: unsupported code_challenge_method %q", ErrInvalidAuthRequest, req.CodeChallengeMethod)
	}

	return req, nil
}

// CompleteAuthorization finishes an approved authorization request. It
// mints a single-use code bound to the request, the user identity and the
// session metadata, and returns the redirect target carrying the code.
func (p *Provider) CompleteAuthorization(req *AuthRequest, userID string, session *Session) (string, error) {
	if req == nil {
		return "", ErrInvalidAuthRequest
	}
	if _, ok := p.store.GetClient(req.ClientID); !ok {
		return "", fmt.Errorf("%w: unknown client %q", ErrInvalidAuthRequest, req.ClientID)
	}

	code, err := randomHex(32)
	if err != nil {
		return "", fmt.Errorf("generating authorization code: %w", err)
	}

	p.store.PutCode(&authCode{
		Code:      code,
		Request:   req,
		UserID:    userID,
		Session:   session,
		ExpiresAt: time.Now().Add(p.codeTTL),
	})

	redirect, err := url.Parse(req.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: malformed redirect_uri: %v", ErrInvalidAuthRequest, err)
	}

	query := redirect.Query()
	query.Set("code", code)
	if req.State != "" {
		query.Set("state", req.State)
	}
	redirect.RawQuery = query.Encode()

	logging.Debug("OAuth", "Completed authorization for client=%s user=%s", req.ClientID, userID)

	return redirect.String(), nil
}

// SessionForToken resolves a bearer token to its bound session.
func (p *Provider) SessionForToken(token string) (*Session, bool) {
	record, ok := p.store.GetToken(token)
	if !ok {
		return nil, false
	}
	return record.Session, true
}

// RegisterClient registers a client directly. Used at startup for
// statically configured clients and by tests.
func (p *Provider) RegisterClient(client *Client) {
	p.store.PutClient(client)
}

// ClientByID returns the registered client with the given ID.
func (p *Provider) ClientByID(clientID string) (*Client, bool) {
	return p.store.GetClient(clientID)
}

// tokenError carries an OAuth error code through the token endpoint.
type tokenError struct {
	code        string
	description string
	status      int
}

func (e *tokenError) Error() string {
	if e.description != "" {
		return fmt.Sprintf("%s: %s", e.code, e.description)
	}
	return e.code
}

func newTokenError(code, description string, status int) error {
	return &tokenError{code: code, description: description, status: status}
}

// ServeToken handles the token endpoint. Only the authorization_code grant
// is supported; refresh tokens are not issued because sessions are expected
// to re-authorize when their token lapses.
func (p *Provider) ServeToken(w http.ResponseWriter, r *http.Request) {
	resp, err := p.processTokenRequest(r)
	if err != nil {
		var tokenErr *tokenError
		if errors.As(err, &tokenErr) {
			writeJSON(w, tokenErr.status, errorResponse{
				Error:            tokenErr.code,
				ErrorDescription: tokenErr.description,
			})
			return
		}
		logging.Error("OAuth", err, "Token endpoint failure")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error"})
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

func (p *Provider) processTokenRequest(r *http.Request) (*tokenResponse, error) {
	if r.Method != http.MethodPost {
		return nil, newTokenError("invalid_request", "token endpoint requires POST", http.StatusBadRequest)
	}
	if err := r.ParseForm(); err != nil {
		return nil, newTokenError("invalid_request", "unable to parse request body", http.StatusBadRequest)
	}

	grantType := strings.TrimSpace(r.Form.Get("grant_type"))
	if grantType != "authorization_code" {
		return nil, newTokenError("unsupported_grant_type", "only authorization_code is supported", http.StatusBadRequest)
	}

	clientID, clientSecret, hasBasic := r.BasicAuth()
	if !hasBasic {
		clientID = strings.TrimSpace(r.Form.Get("client_id"))
		clientSecret = r.Form.Get("client_secret")
	}
	if clientID == "" {
		return nil, newTokenError("invalid_client", "client_id is required", http.StatusUnauthorized)
	}

	client, ok := p.store.GetClient(clientID)
	if !ok {
		return nil, newTokenError("invalid_client", "unknown client", http.StatusUnauthorized)
	}
	if !client.Public {
		if clientSecret == "" || !client.secretMatches(clientSecret) {
			return nil, newTokenError("invalid_client", "client authentication failed", http.StatusUnauthorized)
		}
	}

	code := strings.TrimSpace(r.Form.Get("code"))
	if code == "" {
		return nil, newTokenError("invalid_request", "code is required", http.StatusBadRequest)
	}

	record, ok := p.store.ConsumeCode(code)
	if !ok {
		return nil, newTokenError("invalid_grant", "authorization code is invalid or expired", http.StatusBadRequest)
	}
	if record.Request.ClientID != clientID {
		return nil, newTokenError("invalid_grant", "authorization code was issued to another client", http.StatusBadRequest)
	}

	if redirectURI := strings.TrimSpace(r.Form.Get("redirect_uri")); redirectURI != "" && redirectURI != record.Request.RedirectURI {
		return nil, newTokenError("invalid_grant", "redirect_uri does not match authorization request", http.StatusBadRequest)
	}

	if record.Request.CodeChallenge != "" {
		verifier := r.Form.Get("code_verifier")
		if verifier == "" {
			return nil, newTokenError("invalid_request", "code_verifier is required", http.StatusBadRequest)
		}
		if !verifyPKCE(record.Request.CodeChallenge, verifier) {
			return nil, newTokenError("invalid_grant", "PKCE verification failed", http.StatusBadRequest)
		}
	}

	token, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}

	p.store.PutToken(&accessToken{
		Token:     token,
		ClientID:  clientID,
		UserID:    record.UserID,
		Scope:     record.Request.Scope,
		Session:   record.Session,
		ExpiresAt: time.Now().Add(p.tokenTTL),
	})

	logging.Info("OAuth", "Issued access token for client=%s user=%s", clientID, record.UserID)

	return &tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(p.tokenTTL.Seconds()),
		Scope:       record.Request.Scope,
	}, nil
}

// ServeClientRegistration handles dynamic client registration (RFC 7591
// subset). Clients registering with token_endpoint_auth_method "none" are
// public and must use PKCE; all others receive a generated secret.
func (p *Provider) ServeClientRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "invalid_request"})
		return
	}

	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:            "invalid_client_metadata",
			ErrorDescription: "request body is not valid JSON",
		})
		return
	}
	if len(req.RedirectURIs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:            "invalid_redirect_uri",
			ErrorDescription: "at least one redirect_uri is required",
		})
		return
	}
	for _, uri := range req.RedirectURIs {
		parsed, err := url.Parse(uri)
		if err != nil || !parsed.IsAbs() {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:            "invalid_redirect_uri",
				ErrorDescription: fmt.Sprintf("redirect_uri %q is not an absolute URL", uri),
			})
			return
		}
	}

	public := req.TokenEndpointAuthMethod == "none"

	client := &Client{
		ClientID:     uuid.NewString(),
		ClientName:   req.ClientName,
		RedirectURIs: req.RedirectURIs,
		Public:       public,
		CreatedAt:    time.Now(),
	}

	resp := registrationResponse{
		ClientID:                client.ClientID,
		ClientName:              client.ClientName,
		RedirectURIs:            client.RedirectURIs,
		TokenEndpointAuthMethod: "none",
	}

	if !public {
		secret, err := randomHex(32)
		if err != nil {
			logging.Error("OAuth", err, "Failed to generate client secret")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error"})
			return
		}
		client.ClientSecretHash = hashSecret(secret)
		resp.ClientSecret = secret
		resp.TokenEndpointAuthMethod = "client_secret_post"
	}

	p.store.PutClient(client)

	logging.Info("OAuth", "Registered client id=%s name=%q public=%t", client.ClientID, client.ClientName, public)

	writeJSON(w, http.StatusCreated, resp)
}

// ServeMetadata handles the authorization server metadata document
// (RFC 8414).
func (p *Provider) ServeMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Metadata{
		Issuer:                        p.issuer,
		AuthorizationEndpoint:         p.issuer + "/authorize",
		TokenEndpoint:                 p.issuer + "/token",
		RegistrationEndpoint:          p.issuer + "/register",
		ResponseTypesSupported:        []string{"code"},
		GrantTypesSupported:           []string{"authorization_code"},
		CodeChallengeMethodsSupported: []string{"S256"},
	})
}

func (c *Client) secretMatches(secret string) bool {
	expected := []byte(c.ClientSecretHash)
	actual := []byte(hashSecret(secret))
	return subtle.ConstantTimeCompare(expected, actual) == 1
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// verifyPKCE checks an S256 code verifier against the stored challenge.
func verifyPKCE(challenge, verifier string) bool {
	sum := sha256.Sum256([]byte(verifier))
	computed := base64.RawURLEncoding.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}

// randomHex returns n cryptographically random bytes as lowercase hex.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("OAuth", err, "Failed to encode response body")
	}
}

package oauth

import (
	"encoding/json"
	"time"
)

// AuthRequest carries the parameters of an OAuth authorization request. It
// round-trips through the hidden form field on the authorization page, so
// the JSON field names are part of the wire contract and must stay stable.
type AuthRequest struct {
	ResponseType        string `json:"responseType"`
	ClientID            string `json:"clientId"`
	RedirectURI         string `json:"redirectUri"`
	Scope               string `json:"scope"`
	State               string `json:"state,omitempty"`
	CodeChallenge       string `json:"codeChallenge,omitempty"`
	CodeChallengeMethod string `json:"codeChallengeMethod,omitempty"`
}

// Encode serializes the request for embedding in the authorization form.
func (r *AuthRequest) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeAuthRequest re-parses a round-tripped authorization request. A nil
// result with a nil error never occurs; callers treat any error as "request
// absent".
func DecodeAuthRequest(raw string) (*AuthRequest, error) {
	var req AuthRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Session is the metadata bound to an authorized principal. It is created
// once at approval time and travels with every access token issued for the
// grant. The API key is opaque; nothing here inspects it.
type Session struct {
	User   string `json:"user"`
	APIKey string `json:"apiKey"`
}

// Client is a registered OAuth client.
type Client struct {
	ClientID         string    `json:"client_id"`
	ClientSecretHash string    `json:"-"`
	ClientName       string    `json:"client_name,omitempty"`
	RedirectURIs     []string  `json:"redirect_uris"`
	Public           bool      `json:"-"`
	CreatedAt        time.Time `json:"-"`
}

// RedirectURIAllowed reports whether uri is one of the client's registered
// redirect URIs. Exact string match only.
func (c *Client) RedirectURIAllowed(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// authCode is a single-use authorization code pending exchange.
type authCode struct {
	Code      string
	Request   *AuthRequest
	UserID    string
	Session   *Session
	ExpiresAt time.Time
	Used      bool
}

// accessToken is an issued bearer token and the session it resolves to.
type accessToken struct {
	Token     string
	ClientID  string
	UserID    string
	Scope     string
	Session   *Session
	ExpiresAt time.Time
}

// registrationRequest is the dynamic client registration request body
// (RFC 7591 subset).
type registrationRequest struct {
	RedirectURIs            []string `json:"redirect_uris"`
	ClientName              string   `json:"client_name,omitempty"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
}

// registrationResponse is returned to a newly registered client.
type registrationResponse struct {
	ClientID                string   `json:"client_id"`
	ClientSecret            string   `json:"client_secret,omitempty"`
	ClientName              string   `json:"client_name,omitempty"`
	RedirectURIs            []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
}

// tokenResponse is the successful token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// errorResponse is the OAuth error body for token and registration
// endpoints.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Metadata is the authorization server metadata document (RFC 8414).
type Metadata struct {
	Issuer                        string   `json:"issuer"`
	AuthorizationEndpoint         string   `json:"authorization_endpoint"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	RegistrationEndpoint          string   `json:"registration_endpoint,omitempty"`
	ResponseTypesSupported        []string `json:"response_types_supported"`
	GrantTypesSupported           []string `json:"grant_types_supported"`
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported"`
	ScopesSupported               []string `json:"scopes_supported,omitempty"`
}

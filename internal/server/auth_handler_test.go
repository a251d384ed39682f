package server

import (
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/mcpspace"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/oauth"
)

// newTestAuthHandler returns a handler whose credential probe hits a fake
// API that accepts exactly one key.
func newTestAuthHandler(t *testing.T, validKey string) (*AuthHandler, *oauth.Provider) {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(api.Close)

	provider := oauth.NewProvider("https://mcp.example.com")
	t.Cleanup(provider.Stop)
	provider.RegisterClient(&oauth.Client{
		ClientID:     "client-1",
		ClientName:   "Test Agent",
		RedirectURIs: []string{"https://app.example.com/callback"},
		Public:       true,
	})

	return NewAuthHandler(provider, mcpspace.WithBaseURL(api.URL)), provider
}

func validAuthRequestJSON(t *testing.T) string {
	t.Helper()
	req := &oauth.AuthRequest{
		ResponseType: "code",
		ClientID:     "client-1",
		RedirectURI:  "https://app.example.com/callback",
		Scope:        "mcp",
		State:        "st-1",
	}
	encoded, err := req.Encode()
	require.NoError(t, err)
	return encoded
}

func submitApproval(handler *AuthHandler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/approve", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.HandleApprove(rec, req)
	return rec
}

func TestHandleAuthorize_RendersForm(t *testing.T) {
	handler, _ := newTestAuthHandler(t, "good-key")

	req := httptest.NewRequest(http.MethodGet,
		"/authorize?response_type=code&client_id=client-1&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcallback&scope=mcp&state=st-1", nil)
	rec := httptest.NewRecorder()
	handler.HandleAuthorize(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="oauthReqInfo"`)
	assert.Contains(t, body, `name="apiKey"`)
	assert.Contains(t, body, "Test Agent")
	assert.Contains(t, body, `action="/approve"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestHandleAuthorize_HiddenFieldRoundTrips(t *testing.T) {
	handler, _ := newTestAuthHandler(t, "good-key")

	req := httptest.NewRequest(http.MethodGet,
		"/authorize?response_type=code&client_id=client-1&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcallback&scope=mcp&state=st-1", nil)
	rec := httptest.NewRecorder()
	handler.HandleAuthorize(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Pull the serialized request back out of the rendered attribute.
	re := regexp.MustCompile(`name="oauthReqInfo" value="([^"]*)"`)
	match := re.FindStringSubmatch(rec.Body.String())
	require.Len(t, match, 2, "hidden field not found in rendered page")

	decoded, err := oauth.DecodeAuthRequest(html.UnescapeString(match[1]))
	require.NoError(t, err)
	assert.Equal(t, "client-1", decoded.ClientID)
	assert.Equal(t, "mcp", decoded.Scope)
	assert.Equal(t, "st-1", decoded.State)
}

func TestHandleAuthorize_InvalidRequest(t *testing.T) {
	handler, _ := newTestAuthHandler(t, "good-key")

	req := httptest.NewRequest(http.MethodGet, "/authorize?response_type=token&client_id=client-1", nil)
	rec := httptest.NewRecorder()
	handler.HandleAuthorize(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleApprove_UnparseableRequest(t *testing.T) {
	handler, _ := newTestAuthHandler(t, "good-key")

	// The key is valid; the outcome must still be INVALID LOGIN.
	rec := submitApproval(handler, url.Values{
		"action":       {"approve"},
		"apiKey":       {"good-key"},
		"oauthReqInfo": {`{"clientId":`},
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, invalidLoginBody, rec.Body.String())
}

func TestHandleApprove_MissingRequest(t *testing.T) {
	handler, _ := newTestAuthHandler(t, "good-key")

	rec := submitApproval(handler, url.Values{
		"action": {"approve"},
		"apiKey": {"good-key"},
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, invalidLoginBody, rec.Body.String())
}

func TestHandleApprove_InvalidKey(t *testing.T) {
	handler, _ := newTestAuthHandler(t, "good-key")

	rec := submitApproval(handler, url.Values{
		"action":       {"approve"},
		"apiKey":       {"wrong-key"},
		"oauthReqInfo": {validAuthRequestJSON(t)},
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, invalidAPIKeyBody, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "wrong-key", "credential must never be echoed")
}

func TestHandleApprove_Success(t *testing.T) {
	handler, provider := newTestAuthHandler(t, "good-key")

	rec := submitApproval(handler, url.Values{
		"action":       {"approve"},
		"apiKey":       {"good-key"},
		"oauthReqInfo": {validAuthRequestJSON(t)},
	})

	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", location.Host)
	assert.Equal(t, "st-1", location.Query().Get("state"))

	code := location.Query().Get("code")
	require.NotEmpty(t, code)

	// The minted code exchanges for a token whose session carries the key.
	form := url.Values{
		"grant_type": {"authorization_code"},
		"client_id":  {"client-1"},
		"code":       {code},
	}
	tokenReq := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	tokenReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	tokenRec := httptest.NewRecorder()
	provider.ServeToken(tokenRec, tokenReq)
	require.Equal(t, http.StatusOK, tokenRec.Code, tokenRec.Body.String())

	re := regexp.MustCompile(`"access_token":"([0-9a-f]+)"`)
	match := re.FindStringSubmatch(tokenRec.Body.String())
	require.Len(t, match, 2)

	session, ok := provider.SessionForToken(match[1])
	require.True(t, ok)
	assert.Equal(t, "good-key", session.APIKey)
	assert.Regexp(t, `^[0-9a-f]{32}$`, session.User)
}

func TestHandleApprove_RejectStillValidates(t *testing.T) {
	handler, _ := newTestAuthHandler(t, "good-key")

	t.Run("reject with bad key fails on the key", func(t *testing.T) {
		rec := submitApproval(handler, url.Values{
			"action":       {"reject"},
			"apiKey":       {"wrong-key"},
			"oauthReqInfo": {validAuthRequestJSON(t)},
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, invalidAPIKeyBody, rec.Body.String())
	})

	t.Run("reject with good key completes the grant", func(t *testing.T) {
		rec := submitApproval(handler, url.Values{
			"action":       {"reject"},
			"apiKey":       {"good-key"},
			"oauthReqInfo": {validAuthRequestJSON(t)},
		})
		assert.Equal(t, http.StatusFound, rec.Code)
	})
}

func TestNewSessionID(t *testing.T) {
	hexPattern := regexp.MustCompile(`^[0-9a-f]{32}$`)

	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id, err := newSessionID()
		require.NoError(t, err)
		require.True(t, hexPattern.MatchString(id), "session id %q is not 32 lowercase hex chars", id)
		require.False(t, seen[id], "session id collided after %d draws", i)
		seen[id] = true
	}
}

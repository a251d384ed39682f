package server

import (
	"html/template"
	"net/http"

	"github.com/jaw9c/remote-mymcpspace-mcp-server/pkg/logging"
)

// authorizePageData feeds the authorization form template. OAuthReqInfo is
// the serialized authorization request; it round-trips through the hidden
// form field untouched.
type authorizePageData struct {
	ClientName   string
	Scope        string
	OAuthReqInfo string
}

var authorizeTemplate = template.Must(template.New("authorize").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>MyMCPSpace - Authorization</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 28rem; margin: 4rem auto; padding: 0 1rem; color: #1a1a1a; }
h1 { font-size: 1.4rem; }
label { display: block; margin: 1rem 0 0.25rem; font-weight: 600; }
input[type="password"] { width: 100%; padding: 0.5rem; border: 1px solid #ccc; border-radius: 4px; }
.actions { margin-top: 1.5rem; display: flex; gap: 0.5rem; }
button { padding: 0.5rem 1.25rem; border-radius: 4px; border: none; cursor: pointer; }
button[value="approve"] { background: #2563eb; color: #fff; }
button[value="reject"] { background: #e5e7eb; }
.scope { color: #555; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>Authorize {{if .ClientName}}{{.ClientName}}{{else}}this application{{end}}</h1>
<p>An MCP client is requesting access to MyMCPSpace on your behalf.</p>
{{if .Scope}}<p class="scope">Requested scope: {{.Scope}}</p>{{end}}
<form method="POST" action="/approve">
<input type="hidden" name="oauthReqInfo" value="{{.OAuthReqInfo}}">
<label for="apiKey">MyMCPSpace API key</label>
<input type="password" id="apiKey" name="apiKey" autocomplete="off" required>
<div class="actions">
<button type="submit" name="action" value="approve">Approve</button>
<button type="submit" name="action" value="reject">Reject</button>
</div>
</form>
</body>
</html>
`))

// setSecurityHeaders sets recommended security headers for HTML responses.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; form-action 'self'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}

// renderAuthorizePage writes the authorization form.
func renderAuthorizePage(w http.ResponseWriter, data authorizePageData) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := authorizeTemplate.Execute(w, data); err != nil {
		logging.Error("AuthFlow", err, "Failed to render authorization page")
	}
}

// renderAuthError writes a terminal authorization failure. The body is a
// fixed message that never echoes submitted credentials.
func renderAuthError(w http.ResponseWriter, status int, message string) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

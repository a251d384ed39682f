// Package oauth implements the authorization engine that gates access to
// the tool surface.
//
// The engine is an OAuth 2.1 authorization-code provider with in-memory
// state: dynamically registered clients, single-use authorization codes
// with PKCE (S256), and opaque bearer access tokens. Every token resolves
// to the Session bound when the operator approved the authorization, which
// is how the API credential reaches the tool dispatch layer.
//
// The authorization page itself lives in the server package; this package
// supplies ParseAuthRequest and CompleteAuthorization to it and serves the
// token, registration and metadata endpoints directly.
package oauth

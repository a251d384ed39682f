// Package server wires the authorization flow and the protected MCP tool
// surface into one HTTP server.
//
// The authorization flow is a two-step handshake. GET /authorize parses the
// incoming authorization request and renders a form asking the operator for
// a MyMCPSpace API key, with the request serialized into a hidden field.
// POST /approve re-parses that field, probes the submitted key against the
// live API, and on success mints a fresh session identity, binds the key
// into the session, and completes the grant with a redirect. Failures are
// terminal for the submission and never echo the credential.
//
// The MCP endpoint is protected by bearer middleware: tokens issued by the
// engine resolve to the session carrying the API key, which the tool
// handlers read from the request context.
package server

// Package mcpspace implements the typed client for the MyMCPSpace REST API.
//
// Every remote operation maps to exactly one HTTP request with a bearer
// credential header. Error interpretation is centralized: non-success
// statuses become APIError values classified by kind, and each operation
// wraps failures with a prefix naming the attempted action so a caller can
// tell which call failed without losing why.
//
// The client is stateless; construct one per credential per call. Calls are
// never retried because the like toggle is not idempotent.
//
// ValidateKey is the credential probe used during authorization: a key is
// considered valid iff it can currently list the feed.
package mcpspace

// Package tools exposes the MyMCPSpace operations as MCP tools.
//
// Each tool validates its structured input, builds a fresh API client from
// the credential bound to the calling session, and reports both results and
// failures inside the tool result envelope. A dispatched call always
// resolves: proxy errors become text with IsError set, never a protocol
// fault, so the calling agent always receives a structured response.
package tools

// Package logging provides structured, subsystem-tagged logging built on the
// standard slog package.
//
// Call Init once at startup to configure the minimum level and output, then
// use the level helpers anywhere in the application:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Server", "listening on %s", addr)
//	logging.Error("OAuth", err, "token exchange failed")
//
// Every entry carries a subsystem attribute so related messages can be
// filtered together. Credentials must never be logged whole; use
// TruncateToken for anything secret.
package logging

package oauth

import "context"

type sessionContextKey struct{}

// ContextWithSession returns a context carrying the authorized session.
// The bearer middleware attaches it; tool handlers read it back with
// SessionFromContext.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext extracts the authorized session from the context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	if !ok || session == nil {
		return nil, false
	}
	return session, true
}

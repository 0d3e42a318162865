package shared

import "context"

type contextKey string

const sessionContextKey contextKey = "kitforge.session"

// ContextWithSession stores the session on the context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionFromContext extracts the session from the context, if any.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey).(*Session)
	return sess
}

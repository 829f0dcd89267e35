package auth

import (
	"context"

	"github.com/jw6ventures/carrental-console/internal/backend"
)

type contextKey string

const contextKeySession contextKey = "session"

func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKeySession, sess)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKeySession).(*Session)
	return s, ok && s != nil
}

// CurrentUser returns the signed-in profile or nil.
func CurrentUser(ctx context.Context) *backend.UserProfile {
	if s, ok := SessionFromContext(ctx); ok {
		return &s.User
	}
	return nil
}

// IsAdmin is false when no session is attached or it lacks ROLE_ADMIN.
func IsAdmin(ctx context.Context) bool {
	return CurrentUser(ctx).IsAdmin()
}

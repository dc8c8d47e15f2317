// Package identity carries the current user through the request context.
// The service never authenticates; the transport layer resolves who the
// caller is and attaches it here.
package identity

import (
	"context"

	"emoji-quiz-service/internal/domain"
)

type contextKey struct{}

// WithUser returns a context carrying the given user ID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID extracts the current user from the context. Absence is a
// domain.ErrNotAuthenticated condition, never a silent fallback.
func UserID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", domain.ErrNotAuthenticated
	}
	return id, nil
}

// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"stockpos/internal/core/security"
)

type principalKey struct{}

// WithPrincipal stores the authenticated principal in the request context.
// Only the HTTP layer reads it back; domain services receive the principal
// as an explicit argument.
func WithPrincipal(ctx context.Context, p security.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal returns the principal from context, if any.
func GetPrincipal(ctx context.Context) (security.Principal, bool) {
	if p, ok := ctx.Value(principalKey{}).(security.Principal); ok {
		return p, true
	}
	return security.Principal{}, false
}

// GetUserID returns the authenticated user ID as a string, or empty.
func GetUserID(ctx context.Context) string {
	if p, ok := GetPrincipal(ctx); ok {
		return p.UserID.String()
	}
	return ""
}

// Package contextkeys provides centralized context key definitions
//
// All context keys used across the application are defined here so that
// producers and consumers of request-scoped values share one vocabulary.
package contextkeys

import (
	"context"

	"github.com/recipevault/recipevault/pkg/storage"
)

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the *storage.User resolved by the access guard.
	// Set by: middleware.Guard (pkg/middleware/auth.go)
	// Required by: all protected API endpoints
	UserKey Key = "current_user"

	// TokenKey contains the raw bearer token string the guard accepted.
	// Set by: middleware.Guard
	// Used by: logout handler (the exact token string is blacklisted)
	TokenKey Key = "access_token"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: logging middleware
	RequestIDKey Key = "request_id"
)

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *storage.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// UserFrom extracts the authenticated user from the context, or nil.
func UserFrom(ctx context.Context) *storage.User {
	u, _ := ctx.Value(UserKey).(*storage.User)
	return u
}

// WithToken returns a context carrying the accepted bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}

// TokenFrom extracts the accepted bearer token from the context.
func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(TokenKey).(string)
	return t
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestIDFrom extracts the request ID from the context.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

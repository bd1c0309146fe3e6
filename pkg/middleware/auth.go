// Package middleware contains the access guard that protects every
// resource endpoint.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/recipevault/recipevault/pkg/auth"
	"github.com/recipevault/recipevault/pkg/contextkeys"
	"github.com/recipevault/recipevault/pkg/httputil"
	"github.com/recipevault/recipevault/pkg/observability"
	"github.com/recipevault/recipevault/pkg/storage"
)

// Messages returned by the guard. Clients branch on these strings.
const (
	msgNotAuthenticated = "User is not authenticated"
	msgLoggedOut        = "User is already logged out, please login"
	msgExpiredToken     = "Expired token. Please login to get a new token"
	msgInvalidToken     = "Invalid token. Please register or login"
)

// userCacheTTL bounds how stale a cached user record may be. A deleted
// account keeps working for at most this long.
const userCacheTTL = 60 * time.Second

// GuardStore is the slice of storage the guard needs.
type GuardStore interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	GetUserByID(ctx context.Context, id int64) (*storage.User, error)
}

// Guard authenticates requests with a bearer token and resolves the subject
// user. Checks run in a fixed order: token present, not blacklisted, decodes
// and has not expired, subject exists.
type Guard struct {
	tokens  *auth.TokenService
	store   GuardStore
	users   *lru.LRU[int64, *storage.User]
	metrics *observability.Metrics
}

// NewGuard creates the guard. metrics may be nil, for tests.
func NewGuard(tokens *auth.TokenService, store GuardStore, metrics *observability.Metrics) *Guard {
	return &Guard{
		tokens:  tokens,
		store:   store,
		users:   lru.NewLRU[int64, *storage.User](1024, nil, userCacheTTL),
		metrics: metrics,
	}
}

// Handler wraps next so it only runs for authenticated requests. The
// resolved user and the raw token are placed in the request context.
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			g.reject(w, http.StatusUnauthorized, msgNotAuthenticated, "missing_token")
			return
		}

		blacklisted, err := g.store.IsBlacklisted(r.Context(), token)
		if err != nil {
			httputil.WriteInternalError(w)
			return
		}
		if blacklisted {
			g.reject(w, http.StatusUnauthorized, msgLoggedOut, "blacklisted")
			return
		}

		userID, err := g.tokens.Decode(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				g.reject(w, http.StatusUnauthorized, msgExpiredToken, "expired")
				return
			}
			g.reject(w, http.StatusUnauthorized, msgInvalidToken, "invalid")
			return
		}

		user, err := g.lookupUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				g.reject(w, http.StatusUnauthorized, msgInvalidToken, "unknown_user")
				return
			}
			httputil.WriteInternalError(w)
			return
		}

		ctx := contextkeys.WithUser(r.Context(), user)
		ctx = contextkeys.WithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// lookupUser resolves the token subject, consulting the expiring cache first.
func (g *Guard) lookupUser(ctx context.Context, id int64) (*storage.User, error) {
	if user, ok := g.users.Get(id); ok {
		return user, nil
	}
	user, err := g.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g.users.Add(id, user)
	return user, nil
}

func (g *Guard) reject(w http.ResponseWriter, status int, message, reason string) {
	if g.metrics != nil {
		g.metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	}
	httputil.WriteMessage(w, status, message)
}

// extractToken pulls the bearer token out of the Authorization header.
// Both "Bearer <token>" and a bare token are accepted.
func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

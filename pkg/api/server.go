package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/recipevault/recipevault/pkg/auth"
	"github.com/recipevault/recipevault/pkg/contextkeys"
	"github.com/recipevault/recipevault/pkg/httputil"
	"github.com/recipevault/recipevault/pkg/middleware"
	"github.com/recipevault/recipevault/pkg/observability"
	"github.com/recipevault/recipevault/pkg/storage"
)

// maxBodyBytes bounds request body size. Recipe payloads are small text.
const maxBodyBytes = 1 << 20

// Server holds the handler dependencies and builds the router.
type Server struct {
	store   storage.Store
	tokens  *auth.TokenService
	guard   *middleware.Guard
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewServer wires the API surface. metrics may be nil, for tests.
func NewServer(store storage.Store, tokens *auth.TokenService, guard *middleware.Guard, logger *observability.Logger, metrics *observability.Metrics) *Server {
	return &Server{
		store:   store,
		tokens:  tokens,
		guard:   guard,
		logger:  logger,
		metrics: metrics,
	}
}

// Router builds the route table with middleware applied.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	s.RegisterRoutes(r)

	chain := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(s.logger),
		httputil.LoggingMiddleware(s.logger),
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(maxBodyBytes),
	}
	if s.metrics != nil {
		chain = append(chain, s.metrics.Middleware)
	}
	return httputil.Chain(chain...)(r)
}

// RegisterRoutes attaches every endpoint to the router.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteNotFound(w, "Resource not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteMethodNotAllowed(w)
	})

	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/password-reset", s.handleResetPassword).Methods(http.MethodPut)
	r.Handle("/auth/logout", s.protected(s.handleLogout)).Methods(http.MethodPost)

	// Literal search routes are registered before the {id} routes so mux
	// does not swallow "search" as an id.
	r.Handle("/categories", s.protected(s.handleCreateCategory)).Methods(http.MethodPost)
	r.Handle("/categories", s.protected(s.handleListCategories)).Methods(http.MethodGet)
	r.Handle("/categories/search", s.protected(s.handleSearchCategories)).Methods(http.MethodGet)
	r.Handle("/categories/{id}", s.protected(s.handleGetCategory)).Methods(http.MethodGet)
	r.Handle("/categories/{id}", s.protected(s.handleUpdateCategory)).Methods(http.MethodPut)
	r.Handle("/categories/{id}", s.protected(s.handleDeleteCategory)).Methods(http.MethodDelete)

	r.Handle("/categories/{category_id}/recipes", s.protected(s.handleCreateRecipe)).Methods(http.MethodPost)
	r.Handle("/categories/{category_id}/recipes", s.protected(s.handleListRecipes)).Methods(http.MethodGet)
	r.Handle("/categories/{category_id}/recipes/search", s.protected(s.handleSearchRecipes)).Methods(http.MethodGet)
	r.Handle("/categories/{category_id}/recipes/{id}", s.protected(s.handleGetRecipe)).Methods(http.MethodGet)
	r.Handle("/categories/{category_id}/recipes/{id}", s.protected(s.handleUpdateRecipe)).Methods(http.MethodPut)
	r.Handle("/categories/{category_id}/recipes/{id}", s.protected(s.handleDeleteRecipe)).Methods(http.MethodDelete)
}

// protected wraps a handler with the access guard.
func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return s.guard.Handler(h)
}

// logError logs an unexpected handler error with request context.
func (s *Server) logError(r *http.Request, err error, msg string) {
	s.logger.WithError(err).WithFields(map[string]interface{}{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": contextkeys.RequestIDFrom(r.Context()),
	}).Error(msg)
}

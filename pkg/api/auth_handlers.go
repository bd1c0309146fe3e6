package api

import (
	"errors"
	"net/http"

	"github.com/recipevault/recipevault/pkg/auth"
	"github.com/recipevault/recipevault/pkg/contextkeys"
	"github.com/recipevault/recipevault/pkg/httputil"
	"github.com/recipevault/recipevault/pkg/storage"
	"github.com/recipevault/recipevault/pkg/validation"
)

// handleRegister creates a new account. The email must be unused; the
// username is title-case normalized before storage.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	reg, verr := validation.ValidateRegistration(req.Email, req.Username, req.Password, req.SecretWord)
	if verr != nil {
		httputil.WriteBadRequest(w, verr.Message)
		return
	}

	passwordHash, err := auth.HashPassword(reg.Password)
	if err != nil {
		s.logError(r, err, "failed to hash password")
		httputil.WriteInternalError(w)
		return
	}
	secretHash, err := auth.HashPassword(reg.Secret)
	if err != nil {
		s.logError(r, err, "failed to hash secret word")
		httputil.WriteInternalError(w)
		return
	}

	_, err = s.store.CreateUser(r.Context(), reg.Email, reg.Username, passwordHash, secretHash)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			httputil.WriteConflict(w, "User exists, kindly login")
			return
		}
		s.logError(r, err, "failed to create user")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteMessage(w, http.StatusCreated, "Successfully registered")
}

// handleLogin verifies credentials and issues a bearer token. Unknown email
// and wrong password produce the same response.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	login, verr := validation.ValidateLogin(req.Email, req.Password)
	if verr != nil {
		httputil.WriteBadRequest(w, verr.Message)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), login.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteUnauthorized(w, "Invalid login details")
			return
		}
		s.logError(r, err, "failed to look up user")
		httputil.WriteInternalError(w)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, login.Password) {
		httputil.WriteUnauthorized(w, "Invalid login details")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logError(r, err, "failed to issue token")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, loginResponse{
		Message:     "Successful login",
		AccessToken: token,
	})
}

// handleResetPassword replaces an account's password when the caller knows
// the account's secret word. An unknown email and a wrong secret word are
// indistinguishable to the caller.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	reset, verr := validation.ValidatePasswordReset(req.Email, req.ResetPassword, req.SecretWord)
	if verr != nil {
		httputil.WriteBadRequest(w, verr.Message)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), reset.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, "No matching account found")
			return
		}
		s.logError(r, err, "failed to look up user")
		httputil.WriteInternalError(w)
		return
	}

	if !auth.CheckPassword(user.SecretHash, reset.Secret) {
		httputil.WriteNotFound(w, "No matching account found")
		return
	}

	passwordHash, err := auth.HashPassword(reset.NewPassword)
	if err != nil {
		s.logError(r, err, "failed to hash password")
		httputil.WriteInternalError(w)
		return
	}
	if err := s.store.UpdatePassword(r.Context(), user.ID, passwordHash); err != nil {
		s.logError(r, err, "failed to update password")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, resetPasswordResponse{
		ID:     user.ID,
		Email:  user.Email,
		Status: "success",
	})
}

// handleLogout blacklists the presented token. The guard has already
// verified it and put the raw string in the context.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := contextkeys.TokenFrom(r.Context())
	if token == "" {
		httputil.WriteUnauthorized(w, "User is not authenticated")
		return
	}

	if err := s.store.Invalidate(r.Context(), token); err != nil {
		s.logError(r, err, "failed to blacklist token")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{
		Message: "You have logged out successfully",
		Status:  "success",
	})
}

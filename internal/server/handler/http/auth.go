// Package http provides the JSON API handlers and router of the journal
// server.
package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/daybook/internal/middleware"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/service"
)

// AuthService defines the authentication and account operations
// required by the HTTP handlers.
type AuthService interface {
	Login(ctx context.Context, username, pin string) (*service.LoginResult, error)
	IsLoggedIn(ctx context.Context, token string) bool
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, username, pin string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUsername(ctx context.Context, id int64, token, newUsername string) error
	UpdatePin(ctx context.Context, id int64, currentPin, newPin string) error
}

// AuthHandler handles HTTP requests for login, registration and account settings.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// CredentialsRequest is the JSON payload of register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Pin      string `json:"pin"`
}

// Register creates an account. It does not log the user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.AuthService.Register(r.Context(), req.Username, req.Pin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, service.MsgRegistered, u)
}

// Login checks the credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Username, req.Pin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgLoginSuccess, res)
}

// Logout clears the session of the bearer token, if any.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgLoggedOut, nil)
}

// Session reports whether the bearer token belongs to a logged-in user.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	loggedIn := h.AuthService.IsLoggedIn(r.Context(), middleware.TokenFromRequest(r))
	writeOK(w, http.StatusOK, "", map[string]bool{"logged_in": loggedIn})
}

// Account returns the logged-in user.
func (h *AuthHandler) Account(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.GetUser(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "", u)
}

// UpdateUsername renames the logged-in user.
func (h *AuthHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	err := h.AuthService.UpdateUsername(ctx, middleware.GetUserIDFromContext(ctx), middleware.GetTokenFromContext(ctx), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgUsernameUpdated, nil)
}

// UpdatePin changes the PIN of the logged-in user.
func (h *AuthHandler) UpdatePin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPin string `json:"current_pin"`
		NewPin     string `json:"new_pin"`
	}
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	if err := h.AuthService.UpdatePin(ctx, middleware.GetUserIDFromContext(ctx), req.CurrentPin, req.NewPin); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgPinChanged, nil)
}

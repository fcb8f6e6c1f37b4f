package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atinyakov/daybook/internal/apperr"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/repository"
	"github.com/atinyakov/daybook/internal/session"
	"go.uber.org/zap"
)

// User-facing results of the auth and account operations.
const (
	MsgLoginSuccess    = "Login successful!"
	MsgRegistered      = "Account created!"
	MsgLoggedOut       = "Logged out"
	MsgUsernameUpdated = "Username updated!"
	MsgPinChanged      = "PIN changed!"

	msgUsernameRequired = "Please enter your username"
	msgPinLength        = "PIN must be 4-6 digits"
	msgInvalidLogin     = "Invalid username or PIN!"
	msgUserNotFound     = "User not found"
	msgUsernameShort    = "Username must be at least 3 characters"
	msgUsernameTaken    = "Username already taken"
	msgPinIncorrect     = "Current PIN is incorrect"
	msgNewPin           = "New PIN must be 4-6 digits"

	minUsernameLen = 3
	minPinLen      = 4
	maxPinLen      = 6
)

// LoginResult identifies the session opened by a successful login.
type LoginResult struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// AuthService authenticates users by username and PIN and manages their
// accounts. PINs are compared as stored, without hashing.
type AuthService struct {
	users    UserRepository
	sessions Sessions
	log      *zap.Logger
	now      Clock
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserRepository, sessions Sessions, log *zap.Logger, now Clock) *AuthService {
	if now == nil {
		now = ClockIn(time.Local)
	}
	return &AuthService{users: users, sessions: sessions, log: log, now: now}
}

// Login checks the credentials and opens a session holding the user id and
// username. A PIN shorter than four characters is rejected before any lookup.
func (s *AuthService) Login(ctx context.Context, username, pin string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperr.Validation(msgUsernameRequired)
	}
	if strings.TrimSpace(pin) == "" || len(pin) < minPinLen {
		return nil, apperr.Validation(msgPinLength)
	}

	u, err := s.users.FindByCredentials(ctx, username, pin)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(msgInvalidLogin)
	}
	if err != nil {
		return nil, storageError(s.log, "failed to look up credentials", err)
	}

	token, err := s.sessions.Start(ctx, u.ID, u.Username)
	if err != nil {
		return nil, storageError(s.log, "failed to start session", err)
	}

	s.log.Info("user logged in", zap.Int64("user_id", u.ID))
	return &LoginResult{UserID: u.ID, Username: u.Username, Token: token}, nil
}

// IsLoggedIn reports whether the token carries a non-empty user id.
// Session storage failures count as logged out.
func (s *AuthService) IsLoggedIn(ctx context.Context, token string) bool {
	v, err := s.sessions.Value(ctx, token, session.ItemUserID)
	if err != nil {
		s.log.Warn("session lookup failed", zap.Error(err))
		return false
	}
	return v != ""
}

// Logout removes the session items of token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.End(ctx, token); err != nil {
		return storageError(s.log, "failed to end session", err)
	}
	return nil
}

// Register creates a user. The username is trimmed and must be unique.
func (s *AuthService) Register(ctx context.Context, username, pin string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen {
		return nil, apperr.Validation(msgUsernameShort)
	}
	if !validPin(pin) {
		return nil, apperr.Validation(msgPinLength)
	}

	taken, err := s.users.UsernameTaken(ctx, username, 0)
	if err != nil {
		return nil, storageError(s.log, "failed to check username", err)
	}
	if taken {
		return nil, apperr.Conflict(msgUsernameTaken)
	}

	u := &models.User{Username: username, Pin: pin, CreatedAt: s.now()}
	if err := s.users.Create(ctx, u); err != nil {
		// A concurrent registration can win between the check and the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(msgUsernameTaken)
		}
		return nil, storageError(s.log, "failed to create user", err)
	}

	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return u, nil
}

// GetUser returns the account with id.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return findUser(ctx, s.users, s.log, id)
}

// UpdateUsername renames the user. When token is set, the username held in
// that session is refreshed too.
func (s *AuthService) UpdateUsername(ctx context.Context, id int64, token, newUsername string) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	newUsername = strings.TrimSpace(newUsername)
	if len(newUsername) < minUsernameLen {
		return apperr.Validation(msgUsernameShort)
	}

	taken, err := s.users.UsernameTaken(ctx, newUsername, id)
	if err != nil {
		return storageError(s.log, "failed to check username", err)
	}
	if taken {
		return apperr.Conflict(msgUsernameTaken)
	}

	if err := s.users.UpdateUsername(ctx, id, newUsername); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict(msgUsernameTaken)
		}
		return storageError(s.log, "failed to update username", err)
	}

	if token != "" {
		if err := s.sessions.Set(ctx, token, session.ItemUsername, newUsername); err != nil {
			s.log.Warn("failed to refresh session username", zap.Error(err))
		}
	}
	return nil
}

// UpdatePin replaces the PIN after checking the current one.
func (s *AuthService) UpdatePin(ctx context.Context, id int64, currentPin, newPin string) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u.Pin != currentPin {
		return apperr.Validation(msgPinIncorrect)
	}
	if !validPin(newPin) {
		return apperr.Validation(msgNewPin)
	}

	if err := s.users.UpdatePin(ctx, id, newPin); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return storageError(s.log, "failed to update pin", err)
	}
	return nil
}

// validPin accepts four to six ASCII digits.
func validPin(pin string) bool {
	if len(pin) < minPinLen || len(pin) > maxPinLen {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

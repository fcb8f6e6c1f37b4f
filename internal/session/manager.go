package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Item names stored per session token.
const (
	ItemUserID   = "loggedUserId"
	ItemUsername = "loggedUsername"
)

// Manager issues tokens and reads or writes the items stored under them.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

func key(token, item string) string {
	return "session:" + token + ":" + item
}

// Start creates a new token holding the user id and username.
func (m *Manager) Start(ctx context.Context, userID int64, username string) (string, error) {
	token := uuid.NewString()
	if err := m.store.SetItem(ctx, key(token, ItemUserID), fmt.Sprint(userID)); err != nil {
		return "", err
	}
	if err := m.store.SetItem(ctx, key(token, ItemUsername), username); err != nil {
		return "", err
	}
	return token, nil
}

// Value returns the item stored under token, or "" when either is unknown.
func (m *Manager) Value(ctx context.Context, token, item string) (string, error) {
	if token == "" {
		return "", nil
	}
	return m.store.GetItem(ctx, key(token, item))
}

// Set overwrites a single item of an existing token.
func (m *Manager) Set(ctx context.Context, token, item, value string) error {
	if token == "" {
		return errors.New("empty session token")
	}
	return m.store.SetItem(ctx, key(token, item), value)
}

// End removes every item of the token. Both removals are attempted.
func (m *Manager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return errors.Join(
		m.store.RemoveItem(ctx, key(token, ItemUserID)),
		m.store.RemoveItem(ctx, key(token, ItemUsername)),
	)
}

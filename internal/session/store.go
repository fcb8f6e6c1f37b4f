// Package session maps opaque bearer tokens to the logged-in user through a
// small key/value store.
package session

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a session item lives after it was last written.
const DefaultTTL = 7 * 24 * time.Hour

// Store is the key/value bridge that holds session items.
// GetItem returns "" with a nil error for a missing key.
type Store interface {
	SetItem(ctx context.Context, key, value string) error
	GetItem(ctx context.Context, key string) (string, error)
	RemoveItem(ctx context.Context, key string) error
}

type memoryItem struct {
	value   string
	expires time.Time
}

// MemoryStore is an in-process Store with per-item expiry.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates a MemoryStore whose items expire after ttl.
// A non-positive ttl keeps items until they are removed.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := memoryItem{value: value}
	if s.ttl > 0 {
		item.expires = s.now().Add(s.ttl)
	}
	s.items[key] = item
	return nil
}

func (s *MemoryStore) GetItem(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return "", nil
	}
	if !item.expires.IsZero() && !s.now().Before(item.expires) {
		delete(s.items, key)
		return "", nil
	}
	return item.value, nil
}

func (s *MemoryStore) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	require.NoError(t, s.SetItem(ctx, "k", "v"))
	v, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	now = now.Add(time.Hour)
	v, err = s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v, "expired item is gone")

	v, err = s.GetItem(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestMemoryStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	require.NoError(t, s.SetItem(ctx, "k", "v"))
	require.NoError(t, s.RemoveItem(ctx, "k"))
	require.NoError(t, s.RemoveItem(ctx, "k"))

	v, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	s, err := ConnectRedis(ctx, "redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetItem(ctx, "session:t:loggedUserId", "7"))
	assert.Equal(t, time.Minute, mr.TTL("session:t:loggedUserId"))

	v, err := s.GetItem(ctx, "session:t:loggedUserId")
	require.NoError(t, err)
	assert.Equal(t, "7", v)

	mr.FastForward(2 * time.Minute)
	v, err = s.GetItem(ctx, "session:t:loggedUserId")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetItem(ctx, "a", "b"))
	require.NoError(t, s.RemoveItem(ctx, "a"))
	assert.False(t, mr.Exists("a"))
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), "redis://"+addr, time.Minute)
	assert.Error(t, err)

	_, err = ConnectRedis(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}

func TestRedisStore_GetError(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	defer s.Close()
	mr.Close()

	_, err := s.GetItem(context.Background(), "k")
	assert.Error(t, err)
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultTTL)
	m := NewManager(store)

	token, err := m.Start(ctx, 42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	v, err := m.Value(ctx, token, ItemUserID)
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	raw, err := store.GetItem(ctx, "session:"+token+":loggedUsername")
	require.NoError(t, err)
	assert.Equal(t, "alice", raw)

	require.NoError(t, m.Set(ctx, token, ItemUsername, "alicia"))
	v, err = m.Value(ctx, token, ItemUsername)
	require.NoError(t, err)
	assert.Equal(t, "alicia", v)

	require.NoError(t, m.End(ctx, token))
	v, err = m.Value(ctx, token, ItemUserID)
	require.NoError(t, err)
	assert.Empty(t, v)

	other, err := m.Start(ctx, 42, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestManager_EmptyToken(t *testing.T) {
	m := NewManager(NewMemoryStore(0))

	v, err := m.Value(context.Background(), "", ItemUserID)
	assert.NoError(t, err)
	assert.Empty(t, v)
	assert.NoError(t, m.End(context.Background(), ""))
	assert.Error(t, m.Set(context.Background(), "", ItemUsername, "x"))
}

type failingStore struct{ err error }

func (f failingStore) SetItem(context.Context, string, string) error   { return f.err }
func (f failingStore) GetItem(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) RemoveItem(context.Context, string) error        { return f.err }

func TestManager_StoreFailure(t *testing.T) {
	boom := errors.New("store down")
	m := NewManager(failingStore{err: boom})

	_, err := m.Start(context.Background(), 1, "x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.End(context.Background(), "tok"), boom)
}

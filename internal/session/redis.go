package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session items in Redis with an expiry on every write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// ConnectRedis parses a redis:// URL, connects and pings the server.
func ConnectRedis(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

func (s *RedisStore) GetItem(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

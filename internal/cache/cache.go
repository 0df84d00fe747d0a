package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a key/value store backed by Redis. Values are stored as raw
// JSON bytes under the caller's key with no prefix.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value stored under key.
// Returns nil, nil on a cache miss (not an error).
func (s *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	if len(val) == 0 {
		return nil, nil
	}
	return json.RawMessage(val), nil
}

// Set stores value under key for ttl. An empty value is a no-op.
func (s *RedisStore) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	if len(value) == 0 {
		return nil
	}
	if err := s.client.Set(ctx, key, []byte(value), ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key. Deleting a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces every key written by RedisStore
const RedisKeyPrefix = "eisenhower:"

// RedisStore keeps values as plain redis strings under RedisKeyPrefix
type RedisStore struct {
	client *redis.Client
}

// OpenRedis connects to redisURL (redis://host:port/db)
func OpenRedis(ctx context.Context, redisURL string) (*RedisStore, error) {
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(client), nil
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value stored at key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, RedisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("get", key, err)
	}
	return val, nil
}

// Set stores value at key without expiration
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return wrap("set", key, s.client.Set(ctx, RedisKeyPrefix+key, value, 0).Err())
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return wrap("delete", key, s.client.Del(ctx, RedisKeyPrefix+key).Err())
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

package guardrails

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCounterStore is a Redis-backed CounterStore so rate limits hold
// across multiple instances sharing one engine configuration
type RedisCounterStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisOption represents an option for configuring the Redis counter store
type RedisOption func(*RedisCounterStore)

// WithKeyPrefix sets a custom prefix for Redis keys
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisCounterStore) {
		s.keyPrefix = prefix
	}
}

// RedisConfig contains configuration for Redis
type RedisConfig struct {
	// URL is the Redis address (e.g., "localhost:6379")
	URL string

	// Password is the Redis password
	Password string

	// DB is the Redis database number
	DB int
}

// NewRedisCounterStore creates a new Redis-backed counter store
func NewRedisCounterStore(config RedisConfig, options ...RedisOption) (*RedisCounterStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.URL,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &RedisCounterStore{
		client:    client,
		keyPrefix: "guardrails:ratelimit:",
	}

	for _, option := range options {
		option(store)
	}

	return store, nil
}

// Increment bumps the key's counter atomically. The expiry is set only
// when the counter is created, so the window is fixed rather than
// sliding.
func (s *RedisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := s.keyPrefix + key

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter for %s: %w", key, err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set counter expiry for %s: %w", key, err)
		}
	}

	return count, nil
}

// Close releases the underlying Redis connection
func (s *RedisCounterStore) Close() error {
	return s.client.Close()
}

package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens the history backend at redisURL. The server must answer
// a ping before any request is served, so a bad REDIS_URL fails at startup.
func ConnectRedis(ctx context.Context, redisURL string, ttl time.Duration) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	b := NewRedisBackend(redis.NewClient(opts), ttl)
	if err := b.Ping(ctx); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return b, nil
}

// RedisBackend stores each history list as one Redis string.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend constructs a RedisBackend. A zero ttl keeps keys forever.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

// Get returns nil, nil on a miss.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (b *RedisBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, key, value, b.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// Package cache wraps the Redis client.
// It stores server-side login session records, which need fast lookups and
// expire on their own.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mindweaver-server/internal/config"
)

// RedisCache wraps a Redis client with the operations the service needs.
type RedisCache struct {
	client *redis.Client // Redis client
}

// NewRedisCache connects to Redis and checks the connection.
// Parameters:
//   - cfg: Redis connection settings
//
// Returns:
//   - *RedisCache: cache instance
//   - error: connection error
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Username: cfg.Username, // managed Redis offerings often require one
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close closes the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// ==================== Session records ====================

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// SetSession stores a serialized session record.
// Parameters:
//   - ctx: request context
//   - id: session id
//   - data: serialized record
//   - ttl: time until Redis drops the key
//
// Returns:
//   - error: Redis error
func (c *RedisCache) SetSession(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, sessionKey(id), data, ttl).Err()
}

// GetSession reads a serialized session record.
// Returns:
//   - []byte: nil when the key is absent or has expired
//   - error: Redis error
func (c *RedisCache) GetSession(ctx context.Context, id string) ([]byte, error) {
	data, err := c.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// DeleteSession removes a session record. DEL on a missing key is not an error.
func (c *RedisCache) DeleteSession(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionKey(id)).Err()
}

// ==================== General ====================

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

package session

import (
	"context"
	"encoding/json"
	"time"

	"mindweaver-server/internal/cache"
)

// RedisStore keeps records as JSON under session:<id> with a TTL.
type RedisStore struct {
	cache *cache.RedisCache
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(c *cache.RedisCache) *RedisStore {
	return &RedisStore{cache: c}
}

func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		// already expired, nothing worth storing
		return nil
	}
	return s.cache.SetSession(ctx, rec.ID, data, ttl)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.cache.GetSession(ctx, id)
	if err != nil || data == nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.cache.DeleteSession(ctx, id)
}

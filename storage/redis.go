package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the
// verification engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// RedisStore persists regions as plain Redis string values. Several
// terminals sharing one gate-side Redis instance stay isolated through the
// key prefix, which should include the terminal id.
//
// RedisStore instances are safe for concurrent use.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a [RedisStore] over the given client. prefix sets the
// Redis key namespace.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(region string) string {
	return s.prefix + ":" + region
}

// Save replaces the region contents. Snapshots never expire; a purge removes
// them explicitly.
func (s *RedisStore) Save(ctx context.Context, region string, data []byte) error {
	if err := s.redis.Set(ctx, s.key(region), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load returns the region contents, or [ErrNotFound] when the region has
// never been saved.
func (s *RedisStore) Load(ctx context.Context, region string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(region)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return data, nil
}

// Delete removes the region. Deleting an absent region is not an error.
func (s *RedisStore) Delete(ctx context.Context, region string) error {
	if err := s.redis.Del(ctx, s.key(region)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

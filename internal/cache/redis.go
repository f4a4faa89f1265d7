package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis. Keys are namespaced by prefix.
// When maxEntries is positive, insertion order is kept in a list under
// prefix+"__order" and the oldest keys are deleted once it grows past the cap.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	maxEntries int
}

// NewRedisStore wraps client. prefix should be unique per namespace.
func NewRedisStore(client redis.UniversalClient, prefix string, maxEntries int) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, maxEntries: maxEntries}
}

func (s *RedisStore) orderKey() string {
	return s.prefix + "__order"
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	full := s.prefix + key
	if s.maxEntries <= 0 {
		if err := s.client.Set(ctx, full, value, ttl).Err(); err != nil {
			return fmt.Errorf("redis set %s: %w", key, err)
		}
		return nil
	}

	var size *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, full, value, ttl)
		pipe.LRem(ctx, s.orderKey(), 0, full)
		pipe.RPush(ctx, s.orderKey(), full)
		size = pipe.LLen(ctx, s.orderKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	overflow := size.Val() - int64(s.maxEntries)
	if overflow <= 0 {
		return nil
	}
	evicted, err := s.client.LPopCount(ctx, s.orderKey(), int(overflow)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis evict: %w", err)
	}
	if len(evicted) > 0 {
		if err := s.client.Del(ctx, evicted...).Err(); err != nil {
			return fmt.Errorf("redis evict: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	full := s.prefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, full)
		pipe.LRem(ctx, s.orderKey(), 0, full)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Purge deletes every key under the prefix.
func (s *RedisStore) Purge(ctx context.Context) error {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis purge: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis purge: %w", err)
	}
	return nil
}

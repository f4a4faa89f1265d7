// Package cache implements the score cache: two TTL namespaces over a
// pluggable byte store, one bounded by insertion order.
package cache

import (
	"context"
	"time"
)

// Store is a byte-valued TTL store. Implementations must be safe for
// concurrent use. Get reports a miss for expired keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Purge(ctx context.Context) error
}

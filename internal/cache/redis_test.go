package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore_SetGetExpire(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, "vidfeed:trending:", 0)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte(`["a","b"]`), time.Minute))
	require.True(t, mr.Exists("vidfeed:trending:k"))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `["a","b"]`, string(got))

	mr.FastForward(time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisStore_EvictsOldestInserted(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, "vidfeed:feed:", 2)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, s.Set(ctx, "a", []byte("3"), time.Hour))
	require.NoError(t, s.Set(ctx, "c", []byte("4"), time.Hour))

	require.False(t, mr.Exists("vidfeed:feed:b"), "b became oldest after a was re-set")
	require.True(t, mr.Exists("vidfeed:feed:a"))
	require.True(t, mr.Exists("vidfeed:feed:c"))

	order, err := mr.List("vidfeed:feed:__order")
	require.NoError(t, err)
	require.Equal(t, []string{"vidfeed:feed:a", "vidfeed:feed:c"}, order)
}

func TestRedisStore_DeleteAndPurge(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, "vidfeed:feed:", 10)
	other := NewRedisStore(client, "vidfeed:trending:", 0)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, other.Set(ctx, "t", []byte("3"), time.Hour))

	require.NoError(t, s.Delete(ctx, "a"))
	require.False(t, mr.Exists("vidfeed:feed:a"))

	require.NoError(t, s.Purge(ctx))
	require.False(t, mr.Exists("vidfeed:feed:b"))
	require.False(t, mr.Exists("vidfeed:feed:__order"))
	require.True(t, mr.Exists("vidfeed:trending:t"), "purge stays inside its prefix")
}

func TestRedisStore_UnavailableReturnsError(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, "vidfeed:feed:", 0)
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	require.Error(t, err)
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/timmy/vidfeed/internal/metrics"
)

type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errStoreDown }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (brokenStore) Delete(context.Context, string) error { return errStoreDown }
func (brokenStore) Purge(context.Context) error          { return errStoreDown }

type page struct {
	IDs  []string `json:"ids"`
	More bool     `json:"more"`
}

func TestFeedPageKey(t *testing.T) {
	require.Equal(t, "feed:anonymous:first", FeedPageKey("", ""))
	require.Equal(t, "feed:u1:first", FeedPageKey("u1", ""))
	require.Equal(t, "feed:u1:abc", FeedPageKey("u1", "abc"))
}

func TestScoreCache_FeedPageTTL(t *testing.T) {
	clock := newFakeClock()
	reg := prometheus.NewRegistry()
	m := metrics.NewFeedMetrics(reg)
	c := NewMemoryScoreCache(DefaultScoreCacheConfig(), 100, clock.Now, m)
	ctx := context.Background()
	key := FeedPageKey("", "")

	var got page
	require.False(t, c.GetFeedPage(ctx, key, &got))

	c.SetFeedPage(ctx, key, page{IDs: []string{"v1", "v2"}, More: true})
	clock.Advance(4 * time.Minute)
	require.True(t, c.GetFeedPage(ctx, key, &got))
	require.Equal(t, page{IDs: []string{"v1", "v2"}, More: true}, got)

	clock.Advance(time.Minute)
	require.False(t, c.GetFeedPage(ctx, key, &page{}))

	require.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(metrics.NamespaceFeed, "hit")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(metrics.NamespaceFeed, "miss")))
}

func TestScoreCache_ResultNamespaceIsBounded(t *testing.T) {
	c := NewMemoryScoreCache(DefaultScoreCacheConfig(), 100, nil, nil)
	ctx := context.Background()

	for i := 0; i < 101; i++ {
		c.SetFeedPage(ctx, FeedPageKey(string(rune('A'+i%26))+string(rune('a'+i/26)), ""), page{})
	}
	require.Equal(t, 100, c.results.(*MemoryStore).Len())
	require.False(t, c.GetFeedPage(ctx, FeedPageKey("Aa", ""), &page{}), "first inserted page was evicted")
}

func TestScoreCache_TrendingEmptyIsMiss(t *testing.T) {
	c := NewMemoryScoreCache(DefaultScoreCacheConfig(), 100, nil, nil)
	ctx := context.Background()

	c.SetTrendingIDs(ctx, nil)
	_, ok := c.GetTrendingIDs(ctx)
	require.False(t, ok)

	c.SetTrendingIDs(ctx, []string{"v1", "v2"})
	ids, ok := c.GetTrendingIDs(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"v1", "v2"}, ids)
}

func TestScoreCache_Invalidate(t *testing.T) {
	c := NewMemoryScoreCache(DefaultScoreCacheConfig(), 100, nil, nil)
	ctx := context.Background()
	c.SetTrendingIDs(ctx, []string{"v1"})
	c.SetFeedPage(ctx, FeedPageKey("u1", ""), page{IDs: []string{"v1"}})

	c.Invalidate(ctx)

	_, ok := c.GetTrendingIDs(ctx)
	require.False(t, ok)
	require.False(t, c.GetFeedPage(ctx, FeedPageKey("u1", ""), &page{}))
}

func TestScoreCache_StoreFailureIsMiss(t *testing.T) {
	c := NewScoreCache(brokenStore{}, brokenStore{}, DefaultScoreCacheConfig(), nil)
	ctx := context.Background()

	require.NotPanics(t, func() {
		c.SetFeedPage(ctx, "feed:anonymous:first", page{IDs: []string{"v1"}})
		c.SetTrendingIDs(ctx, []string{"v1"})
		c.Invalidate(ctx)
	})
	require.False(t, c.GetFeedPage(ctx, "feed:anonymous:first", &page{}))
	_, ok := c.GetTrendingIDs(ctx)
	require.False(t, ok)
}

func TestScoreCache_CorruptEntryIsMiss(t *testing.T) {
	results := NewMemoryStore(MemoryStoreConfig{})
	c := NewScoreCache(results, NewMemoryStore(MemoryStoreConfig{}), DefaultScoreCacheConfig(), nil)
	ctx := context.Background()

	require.NoError(t, results.Set(ctx, "feed:anonymous:first", []byte("{not json"), time.Minute))
	require.False(t, c.GetFeedPage(ctx, "feed:anonymous:first", &page{}))
}

package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/timmy/vidfeed/internal/logger"
	"github.com/timmy/vidfeed/internal/metrics"
)

const (
	// TrendingKey is the single key of the trending-id namespace.
	TrendingKey = "trending:7d"
	// AnonymousViewer stands in for a missing viewer id in page keys.
	AnonymousViewer = "anonymous"
	firstPage       = "first"
)

// FeedPageKey builds the result-namespace key for a viewer and cursor.
// Empty values map to "anonymous" and "first".
func FeedPageKey(viewerID, cursor string) string {
	if viewerID == "" {
		viewerID = AnonymousViewer
	}
	if cursor == "" {
		cursor = firstPage
	}
	return "feed:" + viewerID + ":" + cursor
}

// ScoreCacheConfig holds the namespace TTLs.
type ScoreCacheConfig struct {
	ResultTTL   time.Duration
	TrendingTTL time.Duration
}

// DefaultScoreCacheConfig returns five-minute TTLs for both namespaces.
func DefaultScoreCacheConfig() ScoreCacheConfig {
	return ScoreCacheConfig{ResultTTL: 5 * time.Minute, TrendingTTL: 5 * time.Minute}
}

// ScoreCache is the advisory cache in front of feed ranking. Every store or
// serialization failure is logged and reported as a miss.
type ScoreCache struct {
	results  Store
	trending Store
	cfg      ScoreCacheConfig
	metrics  *metrics.FeedMetrics
}

// NewScoreCache creates a ScoreCache over two stores. m may be nil.
func NewScoreCache(results, trending Store, cfg ScoreCacheConfig, m *metrics.FeedMetrics) *ScoreCache {
	return &ScoreCache{results: results, trending: trending, cfg: cfg, metrics: m}
}

// NewMemoryScoreCache builds a ScoreCache on in-process stores, capping the
// result namespace at maxPages.
func NewMemoryScoreCache(cfg ScoreCacheConfig, maxPages int, now func() time.Time, m *metrics.FeedMetrics) *ScoreCache {
	return NewScoreCache(
		NewMemoryStore(MemoryStoreConfig{MaxEntries: maxPages, Now: now}),
		NewMemoryStore(MemoryStoreConfig{Now: now}),
		cfg,
		m,
	)
}

// GetFeedPage decodes the cached page under key into out.
func (c *ScoreCache) GetFeedPage(ctx context.Context, key string, out interface{}) bool {
	hit := c.getJSON(ctx, c.results, metrics.NamespaceFeed, key, out)
	c.metrics.CacheLookup(metrics.NamespaceFeed, hit)
	return hit
}

// SetFeedPage stores page under key.
func (c *ScoreCache) SetFeedPage(ctx context.Context, key string, page interface{}) {
	c.setJSON(ctx, c.results, key, page, c.cfg.ResultTTL)
}

// GetTrendingIDs returns the cached trending pool. An empty list is a miss.
func (c *ScoreCache) GetTrendingIDs(ctx context.Context) ([]string, bool) {
	var ids []string
	hit := c.getJSON(ctx, c.trending, metrics.NamespaceTrending, TrendingKey, &ids) && len(ids) > 0
	c.metrics.CacheLookup(metrics.NamespaceTrending, hit)
	if !hit {
		return nil, false
	}
	return ids, true
}

// SetTrendingIDs caches a non-empty trending pool.
func (c *ScoreCache) SetTrendingIDs(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	c.setJSON(ctx, c.trending, TrendingKey, ids, c.cfg.TrendingTTL)
}

// Invalidate drops both namespaces.
func (c *ScoreCache) Invalidate(ctx context.Context) {
	if err := c.results.Purge(ctx); err != nil {
		logger.CtxWarn(ctx, "[ScoreCache] purge results failed: %v", err)
	}
	if err := c.trending.Purge(ctx); err != nil {
		logger.CtxWarn(ctx, "[ScoreCache] purge trending failed: %v", err)
	}
}

func (c *ScoreCache) getJSON(ctx context.Context, store Store, namespace, key string, out interface{}) bool {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.CtxWarn(ctx, "[ScoreCache] %s get %q failed, treating as miss: %v", namespace, key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.CtxWarn(ctx, "[ScoreCache] %s decode %q failed, treating as miss: %v", namespace, key, err)
		return false
	}
	return true
}

func (c *ScoreCache) setJSON(ctx context.Context, store Store, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.CtxWarn(ctx, "[ScoreCache] encode %q failed: %v", key, err)
		return
	}
	if err := store.Set(ctx, key, data, ttl); err != nil {
		logger.CtxWarn(ctx, "[ScoreCache] set %q failed: %v", key, err)
	}
}

package service

import (
	"context"

	"github.com/timmy/vidfeed/internal/domain"
	"github.com/timmy/vidfeed/internal/logger"
)

// trendingPool yields the trending candidate pool. Every strategy returns
// eligible videos inside the trending window, most viewed first.
type trendingPool interface {
	pool(ctx context.Context, st *rankState) ([]domain.Video, error)
}

// trendingStrategy picks the cached pool for anonymous first pages and the
// direct query otherwise.
func (r *Ranker) trendingStrategy(st *rankState) trendingPool {
	direct := directTrendingPool{r: r}
	if r.cache != nil && st.anonymous() && len(st.exclude) == 0 {
		return cachedTrendingPool{r: r, fallback: direct}
	}
	return direct
}

func trendingQuery(st *rankState) domain.VideoQuery {
	return domain.VideoQuery{
		CreatedAfter: st.now.Add(-trendingWindow),
		ExcludeIDs:   st.exclude,
		EligibleOnly: true,
		OrderBy:      domain.OrderPopular,
		Limit:        trendingPoolSize,
	}
}

// directTrendingPool queries the store and refreshes the cached id list when
// the pool is unfiltered.
type directTrendingPool struct {
	r *Ranker
}

func (p directTrendingPool) pool(ctx context.Context, st *rankState) ([]domain.Video, error) {
	videos, err := p.r.store.FindVideos(ctx, trendingQuery(st))
	if err != nil {
		return nil, err
	}
	if p.r.cache != nil && len(st.exclude) == 0 {
		ids := make([]string, len(videos))
		for i, v := range videos {
			ids[i] = v.ID
		}
		p.r.cache.SetTrendingIDs(ctx, ids)
	}
	return videos, nil
}

// cachedTrendingPool loads the cached ids back through the store, so
// moderation and the window are re-checked.
type cachedTrendingPool struct {
	r        *Ranker
	fallback trendingPool
}

func (p cachedTrendingPool) pool(ctx context.Context, st *rankState) ([]domain.Video, error) {
	ids, ok := p.r.cache.GetTrendingIDs(ctx)
	if !ok {
		return p.fallback.pool(ctx, st)
	}
	q := trendingQuery(st)
	q.IDIn = ids
	videos, err := p.r.store.FindVideos(ctx, q)
	if err != nil {
		return nil, err
	}
	logger.CtxDebug(ctx, "[Ranker] trending pool from cache: %d ids, %d eligible", len(ids), len(videos))
	return videos, nil
}

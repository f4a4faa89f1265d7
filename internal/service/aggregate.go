package service

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/vidfeed/internal/domain"
)

const (
	recencyWindow   = 24 * time.Hour
	recencyPoolSize = 20
	recencyScore    = 30.0
	overFetchFactor = 2
)

// aggregate is the ranked outcome of one request before hydration.
type aggregate struct {
	// top holds at most overFetchFactor*limit scores, best first.
	top []domain.VideoScore
	// total is the number of scored candidates before truncation.
	total int
}

// Aggregate scores the candidates for a viewer, folds in the recency
// fallback and truncates to the over-fetch window.
func (r *Ranker) Aggregate(ctx context.Context, viewerID string, exclude []string, now time.Time, limit int) (*aggregate, error) {
	st, err := r.Score(ctx, viewerID, exclude, now)
	if err != nil {
		return nil, err
	}
	if err := r.recencyFallback(ctx, st); err != nil {
		return nil, fmt.Errorf("recency fallback: %w", err)
	}
	r.metrics.ObserveCandidates("recency", st.scores.Len())

	ranked := st.scores.Ranked()
	agg := &aggregate{total: len(ranked)}
	n := overFetchFactor * limit
	if n > len(ranked) {
		n = len(ranked)
	}
	agg.top = ranked[:n]
	return agg, nil
}

// recencyFallback seeds fresh uploads that no pass picked up. Videos the
// viewer liked stay out, whether or not an earlier pass saw them.
func (r *Ranker) recencyFallback(ctx context.Context, st *rankState) error {
	videos, err := r.store.FindVideos(ctx, domain.VideoQuery{
		CreatedAfter: st.now.Add(-recencyWindow),
		ExcludeIDs:   st.exclude,
		EligibleOnly: true,
		OrderBy:      domain.OrderNewest,
		Limit:        recencyPoolSize,
	})
	if err != nil {
		return err
	}

	fresh := make([]string, 0, len(videos))
	for _, v := range videos {
		if st.scores.Has(v.ID) {
			continue
		}
		if _, liked := st.liked[v.ID]; liked {
			continue
		}
		fresh = append(fresh, v.ID)
	}
	if len(fresh) == 0 {
		return nil
	}

	if !st.anonymous() {
		liked, err := r.store.LikedVideoIDs(ctx, st.viewerID, fresh)
		if err != nil {
			return err
		}
		for _, id := range liked {
			st.liked[id] = struct{}{}
		}
	}

	for _, id := range fresh {
		if _, liked := st.liked[id]; liked {
			continue
		}
		st.scores.Add(id, recencyScore, domain.ReasonRecent)
	}
	return nil
}

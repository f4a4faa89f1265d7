package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/timmy/vidfeed/internal/domain"
)

func TestTrendingScore(t *testing.T) {
	tests := []struct {
		name       string
		age        time.Duration
		views      int64
		likes      int64
		comments   int64
		wantScore  float64
		wantRecent bool
	}{
		{"two hours old", 2 * time.Hour, 100, 10, 5, (20+7.5+10)/2.0 + 50, true},
		{"under an hour clamps to one", 30 * time.Minute, 10, 0, 0, 1 + 50, true},
		{"second day", 30 * time.Hour, 300, 0, 0, 1 + 25, true},
		{"three days", 72 * time.Hour, 720, 0, 0, 1, false},
		{"exactly one day", 24 * time.Hour, 0, 0, 0, 25, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := &domain.Video{
				ViewCount:    tc.views,
				LikeCount:    tc.likes,
				CommentCount: tc.comments,
				CreatedAt:    testNow.Add(-tc.age),
			}
			score, recent := trendingScore(v, testNow)
			require.InDelta(t, tc.wantScore, score, 1e-9)
			require.Equal(t, tc.wantRecent, recent)
		})
	}
}

func TestRanker_DiversityTiers(t *testing.T) {
	store := newFakeStore()
	store.addVideo("s1", "small", 72*time.Hour, 0, 0, 0)
	for i := 1; i <= 6; i++ {
		store.addVideo(fmt.Sprintf("m%d", i), "mid", 72*time.Hour, 0, 0, 0)
	}
	for i := 1; i <= 21; i++ {
		store.addVideo(fmt.Sprintf("b%d", i), "big", 72*time.Hour, 0, 0, 0)
	}
	r := NewRanker(store, nil, nil)

	st, err := r.Score(context.Background(), "viewer", nil, testNow)
	require.NoError(t, err)

	s1, _ := st.scores.Get("s1")
	require.InDelta(t, 30, s1.Score, 1e-9)
	require.Equal(t, "trending, new-creator", s1.Reason)

	m1, _ := st.scores.Get("m1")
	require.InDelta(t, 15, m1.Score, 1e-9)
	require.Equal(t, "trending, new-creator", m1.Reason)

	b1, _ := st.scores.Get("b1")
	require.InDelta(t, 0, b1.Score, 1e-9)
	require.Equal(t, "trending", b1.Reason)
}

func TestRanker_AnonymousRunsTrendingOnly(t *testing.T) {
	store := newFakeStore()
	store.addVideo("s1", "small", 72*time.Hour, 0, 0, 0)
	store.follow("viewer", "small")
	r := NewRanker(store, nil, nil)

	st, err := r.Score(context.Background(), "", nil, testNow)
	require.NoError(t, err)

	s1, ok := st.scores.Get("s1")
	require.True(t, ok)
	require.Equal(t, "trending", s1.Reason)
	require.Equal(t, 1, store.callCount(), "only the trending query runs")
}

func TestRanker_AffinityCountsSharedTags(t *testing.T) {
	store := newFakeStore()
	// Liked videos are older than the trending window so only affinity scores them.
	store.addVideo("liked1", "other", 10*24*time.Hour, 0, 0, 0, "dance", "cats")
	store.addVideo("liked2", "other", 10*24*time.Hour, 0, 0, 0, "food")
	store.addVideo("two-tags", "creator", 10*24*time.Hour, 0, 0, 0, "dance", "food", "misc")
	store.addVideo("one-tag", "creator", 10*24*time.Hour, 0, 0, 0, "cats")
	store.addVideo("own", "viewer", 10*24*time.Hour, 0, 0, 0, "dance")
	store.addVideo("unrelated", "creator", 10*24*time.Hour, 0, 0, 0, "misc")
	store.like("viewer", "liked1", time.Hour)
	store.like("viewer", "liked2", 2*time.Hour)

	st, err := NewRanker(store, nil, nil).Score(context.Background(), "viewer", nil, testNow)
	require.NoError(t, err)

	two, ok := st.scores.Get("two-tags")
	require.True(t, ok)
	// 2 shared tags, creator has 3 videos.
	require.InDelta(t, 40+30, two.Score, 1e-9)
	require.Equal(t, "similar-content, new-creator", two.Reason)

	one, ok := st.scores.Get("one-tag")
	require.True(t, ok)
	require.InDelta(t, 20+30, one.Score, 1e-9)

	require.False(t, st.scores.Has("own"), "viewer's own uploads are not affinity candidates")
	require.False(t, st.scores.Has("unrelated"))
	require.False(t, st.scores.Has("liked1"))
	require.False(t, st.scores.Has("liked2"))
	require.Contains(t, st.liked, "liked1")
}

func TestRanker_RecencyFallbackSurfacesFreshUploads(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < trendingPoolSize; i++ {
		store.addVideo(fmt.Sprintf("p%03d", i), fmt.Sprintf("author%d", i), 72*time.Hour, int64(1000+i), 0, 0)
	}
	store.addVideo("fresh", "newbie", time.Hour, 0, 0, 0)

	agg, err := NewRanker(store, nil, nil).Aggregate(context.Background(), "", nil, testNow, 5)
	require.NoError(t, err)
	require.Equal(t, trendingPoolSize+1, agg.total)
	require.Len(t, agg.top, 10)
	require.Equal(t, domain.VideoScore{VideoID: "fresh", Score: 30, Reason: "recent"}, agg.top[0])
}

func TestRanker_RecencyFallbackDoesNotOverrideScores(t *testing.T) {
	store := newFakeStore()
	store.addVideo("v1", "a", 2*time.Hour, 100, 10, 5)

	agg, err := NewRanker(store, nil, nil).Aggregate(context.Background(), "", nil, testNow, 10)
	require.NoError(t, err)
	require.Len(t, agg.top, 1)
	require.Equal(t, "trending, recent", agg.top[0].Reason)
	require.InDelta(t, 68.75, agg.top[0].Score, 1e-9)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/vidfeed/internal/cache"
	"github.com/timmy/vidfeed/internal/domain"
	"github.com/timmy/vidfeed/internal/logger"
	"github.com/timmy/vidfeed/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Candidate pool bounds and score weights.
const (
	trendingWindow   = 7 * 24 * time.Hour
	trendingPoolSize = 100
	socialPoolSize   = 50
	affinityPoolSize = 50
	recentLikesLimit = 50

	likeWeight    = 2.0
	commentWeight = 1.5
	viewWeight    = 0.1

	recentBonusDay     = 50.0
	recentBonusTwoDays = 25.0
	followingBonus     = 50.0
	sharedTagBonus     = 20.0
	smallCreatorBonus  = 30.0
	midCreatorBonus    = 15.0
	smallCreatorMax    = 5
	midCreatorMax      = 20
)

var tracer = otel.Tracer("github.com/timmy/vidfeed/internal/service")

// rankState is the per-request input and accumulator threaded through the
// passes. Nothing in it outlives the request.
type rankState struct {
	viewerID string
	exclude  []string
	now      time.Time
	scores   *ScoreMap
	liked    map[string]struct{}
}

func (st *rankState) anonymous() bool {
	return st.viewerID == ""
}

// scoringPass folds one signal into st.scores. Passes only add to or delete
// from the map built by earlier ones.
type scoringPass struct {
	name          string
	authenticated bool
	run           func(ctx context.Context, st *rankState) error
}

// Ranker runs the scoring pipeline over candidate pools.
type Ranker struct {
	store   CandidateStore
	cache   *cache.ScoreCache
	metrics *metrics.FeedMetrics
}

// NewRanker creates a Ranker. scoreCache and m may be nil.
func NewRanker(store CandidateStore, scoreCache *cache.ScoreCache, m *metrics.FeedMetrics) *Ranker {
	return &Ranker{store: store, cache: scoreCache, metrics: m}
}

// pipeline lists the passes in their fixed order. The affinity pass's like
// exclusion must see every candidate the trending and social passes added.
func (r *Ranker) pipeline() []scoringPass {
	return []scoringPass{
		{name: "trending", run: r.trendingPass},
		{name: "social", authenticated: true, run: r.socialPass},
		{name: "affinity", authenticated: true, run: r.affinityPass},
		{name: "diversity", authenticated: true, run: r.diversityPass},
	}
}

// Score runs every applicable pass and returns the populated state.
func (r *Ranker) Score(ctx context.Context, viewerID string, exclude []string, now time.Time) (*rankState, error) {
	st := &rankState{
		viewerID: viewerID,
		exclude:  exclude,
		now:      now,
		scores:   NewScoreMap(),
		liked:    make(map[string]struct{}),
	}
	for _, p := range r.pipeline() {
		if p.authenticated && st.anonymous() {
			continue
		}
		if err := r.runPass(ctx, p, st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (r *Ranker) runPass(ctx context.Context, p scoringPass, st *rankState) error {
	ctx, span := tracer.Start(ctx, "feed.pass."+p.name)
	defer span.End()

	start := time.Now()
	if err := p.run(ctx, st); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s pass: %w", p.name, err)
	}
	span.SetAttributes(attribute.Int("feed.candidates", st.scores.Len()))
	r.metrics.ObserveCandidates(p.name, st.scores.Len())
	logger.With(nil).WithPass(p.name).
		WithCount(st.scores.Len()).
		WithDuration(time.Since(start).Milliseconds()).
		Debug(ctx, "[Ranker] pass complete")
	return nil
}

// trendingPass scores the engagement-ranked pool of the last seven days.
func (r *Ranker) trendingPass(ctx context.Context, st *rankState) error {
	videos, err := r.trendingStrategy(st).pool(ctx, st)
	if err != nil {
		return err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("feed.pool", len(videos)))
	for i := range videos {
		score, recent := trendingScore(&videos[i], st.now)
		reason := domain.ReasonTrending
		if recent {
			reason += ", " + domain.ReasonRecent
		}
		st.scores.Add(videos[i].ID, score, reason)
	}
	return nil
}

// trendingScore returns engagement per hour of age plus the recency bonus,
// and whether a recency bonus applied.
func trendingScore(v *domain.Video, now time.Time) (float64, bool) {
	age := now.Sub(v.CreatedAt)
	hours := age.Hours()
	if hours < 1 {
		hours = 1
	}
	engagement := (float64(v.LikeCount)*likeWeight +
		float64(v.CommentCount)*commentWeight +
		float64(v.ViewCount)*viewWeight) / hours

	switch {
	case age < 24*time.Hour:
		return engagement + recentBonusDay, true
	case age < 48*time.Hour:
		return engagement + recentBonusTwoDays, true
	default:
		return engagement, false
	}
}

// socialPass boosts videos from followed creators.
func (r *Ranker) socialPass(ctx context.Context, st *rankState) error {
	following, err := r.store.FollowingIDs(ctx, st.viewerID)
	if err != nil {
		return err
	}
	if len(following) == 0 {
		return nil
	}
	videos, err := r.store.FindVideos(ctx, domain.VideoQuery{
		AuthorIn:     following,
		ExcludeIDs:   st.exclude,
		EligibleOnly: true,
		OrderBy:      domain.OrderNewest,
		Limit:        socialPoolSize,
	})
	if err != nil {
		return err
	}
	for _, v := range videos {
		st.scores.Add(v.ID, followingBonus, domain.ReasonFollowing)
	}
	return nil
}

// affinityPass boosts videos sharing hashtags with the viewer's recent
// likes, then drops every liked video from the map.
func (r *Ranker) affinityPass(ctx context.Context, st *rankState) error {
	likes, err := r.store.RecentLikes(ctx, st.viewerID, recentLikesLimit)
	if err != nil {
		return err
	}

	tagSet := make(map[string]struct{})
	tags := make([]string, 0)
	for _, l := range likes {
		for _, tag := range l.HashtagIDs {
			if _, ok := tagSet[tag]; ok {
				continue
			}
			tagSet[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	if len(tags) > 0 {
		videos, err := r.store.FindVideos(ctx, domain.VideoQuery{
			HashtagIn:      tags,
			AuthorNotEqual: st.viewerID,
			ExcludeIDs:     st.exclude,
			EligibleOnly:   true,
			OrderBy:        domain.OrderPopular,
			Limit:          affinityPoolSize,
		})
		if err != nil {
			return err
		}
		for _, v := range videos {
			shared := 0
			for _, tag := range v.HashtagIDs() {
				if _, ok := tagSet[tag]; ok {
					shared++
				}
			}
			if shared == 0 {
				continue
			}
			st.scores.Add(v.ID, sharedTagBonus*float64(shared), domain.ReasonSimilarContent)
		}
	}

	if st.scores.Len() == 0 {
		return nil
	}
	liked, err := r.store.LikedVideoIDs(ctx, st.viewerID, st.scores.IDs())
	if err != nil {
		return err
	}
	for _, id := range liked {
		st.scores.Delete(id)
		st.liked[id] = struct{}{}
	}
	return nil
}

// diversityPass favours creators with few uploads.
func (r *Ranker) diversityPass(ctx context.Context, st *rankState) error {
	if st.scores.Len() == 0 {
		return nil
	}
	ids := st.scores.IDs()
	counts, err := r.store.AuthorVideoCounts(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		n, ok := counts[id]
		if !ok {
			continue
		}
		switch {
		case n <= smallCreatorMax:
			st.scores.Add(id, smallCreatorBonus, domain.ReasonNewCreator)
		case n <= midCreatorMax:
			st.scores.Add(id, midCreatorBonus, domain.ReasonNewCreator)
		}
	}
	return nil
}

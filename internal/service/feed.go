package service

import (
	"context"
	"time"

	"github.com/timmy/vidfeed/internal/cache"
	"github.com/timmy/vidfeed/internal/logger"
	"github.com/timmy/vidfeed/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
)

// FeedConfig holds paging limits for the feed service.
type FeedConfig struct {
	DefaultLimit int
	MaxLimit     int
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// DefaultFeedConfig returns a page size of 20, capped at 50.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{DefaultLimit: 20, MaxLimit: 50}
}

// FeedService serves ranked, cursor-paginated feed pages.
type FeedService struct {
	ranker    *Ranker
	assembler *Assembler
	cache     *cache.ScoreCache
	metrics   *metrics.FeedMetrics
	cfg       FeedConfig
}

// NewFeedService wires the ranking pipeline.
// Parameters:
//   - store: candidate query surface.
//   - scoreCache: first-page and trending cache; nil disables caching.
//   - urls: media URL resolver; nil leaves storage keys unresolved.
//   - m: metrics sink; may be nil.
//   - cfg: paging limits.
//
// Returns:
//   - *FeedService: ready to serve requests concurrently.
func NewFeedService(
	store CandidateStore,
	scoreCache *cache.ScoreCache,
	urls MediaURLResolver,
	m *metrics.FeedMetrics,
	cfg FeedConfig,
) *FeedService {
	def := DefaultFeedConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &FeedService{
		ranker:    NewRanker(store, scoreCache, m),
		assembler: NewAssembler(store, urls),
		cache:     scoreCache,
		metrics:   m,
		cfg:       cfg,
	}
}

// cachedPage is a first page as stored in the score cache. Limit guards
// against serving a page built for a different page size.
type cachedPage struct {
	Limit int           `json:"limit"`
	Page  *FeedResponse `json:"page"`
}

// GetRecommendedVideos returns one page of the ranked feed.
// A nil or empty viewerID is an anonymous viewer. An undecodable cursor is
// treated as absent. limit is clamped to the configured bounds.
// Store failures abort the request; cache failures never do.
func (s *FeedService) GetRecommendedVideos(ctx context.Context, viewerID *string, cursor *string, limit int) (resp *FeedResponse, err error) {
	start := time.Now()
	viewer := ""
	if viewerID != nil {
		viewer = *viewerID
	}
	viewerLabel := metrics.ViewerAnonymous
	if viewer != "" {
		viewerLabel = metrics.ViewerAuthenticated
		ctx = logger.SetViewerID(ctx, viewer)
	}
	limit = s.clampLimit(limit)

	ctx, span := tracer.Start(ctx, "feed.GetRecommendedVideos")
	span.SetAttributes(attribute.Bool("feed.anonymous", viewer == ""), attribute.Int("feed.limit", limit))
	defer span.End()

	outcome := metrics.OutcomeOK
	defer func() {
		switch {
		case err != nil:
			outcome = metrics.OutcomeError
			span.RecordError(err)
		case outcome == metrics.OutcomeOK && len(resp.Videos) == 0:
			outcome = metrics.OutcomeEmpty
		}
		s.metrics.ObserveRequest(viewerLabel, outcome, time.Since(start))
	}()

	var cur Cursor
	if cursor != nil {
		var decodeErr error
		if cur, decodeErr = DecodeCursor(*cursor); decodeErr != nil {
			logger.CtxDebug(ctx, "[FeedService] ignoring cursor: %v", decodeErr)
		}
	}

	firstPage := cur.IsFirstPage()
	cacheKey := cache.FeedPageKey(viewer, "")
	if firstPage && s.cache != nil {
		var cached cachedPage
		if s.cache.GetFeedPage(ctx, cacheKey, &cached) && cached.Limit == limit && cached.Page != nil {
			outcome = metrics.OutcomeCached
			logger.With(nil).WithCacheHit(true).
				WithCount(len(cached.Page.Videos)).
				Debug(ctx, "[FeedService] served first page from cache")
			return normalize(cached.Page), nil
		}
	}

	agg, err := s.ranker.Aggregate(ctx, viewer, cur.ExcludeIDs, s.cfg.Clock(), limit)
	if err != nil {
		logger.CtxError(ctx, "[FeedService] ranking failed: %v", err)
		return nil, err
	}
	resp, err = s.assembler.Assemble(ctx, agg, cur, limit)
	if err != nil {
		logger.CtxError(ctx, "[FeedService] assembly failed: %v", err)
		return nil, err
	}

	if firstPage && s.cache != nil {
		s.cache.SetFeedPage(ctx, cacheKey, cachedPage{Limit: limit, Page: resp})
	}

	logger.With(logger.Fields{logger.FieldCursor: !firstPage}).
		WithCacheHit(false).
		WithPage(limit, agg.total).
		WithCount(len(resp.Videos)).
		WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "[FeedService] served %d of %d candidates", len(resp.Videos), agg.total)
	return resp, nil
}

func (s *FeedService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

// normalize restores the non-nil empty slices JSON decoding may drop.
func normalize(resp *FeedResponse) *FeedResponse {
	if resp.Videos == nil {
		resp.Videos = []VideoRecord{}
	}
	for i := range resp.Videos {
		if resp.Videos[i].Hashtags == nil {
			resp.Videos[i].Hashtags = []string{}
		}
	}
	return resp
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/vidfeed/internal/domain"
)

// AuthorSummary is the public slice of a video's author.
type AuthorSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// VideoRecord is one hydrated feed item.
type VideoRecord struct {
	ID           string         `json:"id"`
	Caption      string         `json:"caption"`
	VideoURL     string         `json:"videoUrl"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	ViewCount    int64          `json:"viewCount"`
	LikeCount    int64          `json:"likeCount"`
	CommentCount int64          `json:"commentCount"`
	Hashtags     []string       `json:"hashtags"`
	Author       *AuthorSummary `json:"author,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	Score        float64        `json:"score"`
	Reason       string         `json:"reason"`
}

// FeedResponse is one page of the ranked feed.
type FeedResponse struct {
	Videos     []VideoRecord `json:"videos"`
	NextCursor *string       `json:"nextCursor"`
	HasMore    bool          `json:"hasMore"`
}

func emptyFeed() *FeedResponse {
	return &FeedResponse{Videos: []VideoRecord{}}
}

// Assembler hydrates ranked ids into records.
type Assembler struct {
	store CandidateStore
	urls  MediaURLResolver
}

// NewAssembler creates an Assembler. urls may be nil, leaving keys as-is.
func NewAssembler(store CandidateStore, urls MediaURLResolver) *Assembler {
	return &Assembler{store: store, urls: urls}
}

// Assemble hydrates up to limit records from agg in ranked order and emits
// the next cursor. Store rows come back unordered and are re-mapped by id.
func (a *Assembler) Assemble(ctx context.Context, agg *aggregate, prev Cursor, limit int) (*FeedResponse, error) {
	if agg == nil || len(agg.top) == 0 {
		return emptyFeed(), nil
	}

	ids := make([]string, len(agg.top))
	for i, s := range agg.top {
		ids[i] = s.VideoID
	}
	rows, err := a.store.GetVideosByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate videos: %w", err)
	}
	byID := make(map[string]*domain.Video, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	videos := make([]VideoRecord, 0, limit)
	for _, s := range agg.top {
		if len(videos) == limit {
			break
		}
		v, ok := byID[s.VideoID]
		if !ok {
			continue
		}
		videos = append(videos, a.record(v, s))
	}

	resp := &FeedResponse{Videos: videos}
	if agg.total > limit && len(videos) > 0 {
		next := Cursor{
			ExcludeIDs: make([]string, 0, len(prev.ExcludeIDs)+len(videos)),
			LastScore:  videos[len(videos)-1].Score,
		}
		next.ExcludeIDs = append(next.ExcludeIDs, prev.ExcludeIDs...)
		for _, v := range videos {
			next.ExcludeIDs = append(next.ExcludeIDs, v.ID)
		}
		token, err := EncodeCursor(next)
		if err != nil {
			return nil, err
		}
		resp.NextCursor = &token
		resp.HasMore = true
	}
	return resp, nil
}

func (a *Assembler) record(v *domain.Video, s domain.VideoScore) VideoRecord {
	tags := make([]string, len(v.Hashtags))
	for i, h := range v.Hashtags {
		tags[i] = h.Name
	}
	rec := VideoRecord{
		ID:           v.ID,
		Caption:      v.Caption,
		VideoURL:     a.resolve(v.VideoURL),
		ThumbnailURL: a.resolve(v.ThumbnailURL),
		ViewCount:    v.ViewCount,
		LikeCount:    v.LikeCount,
		CommentCount: v.CommentCount,
		Hashtags:     tags,
		CreatedAt:    v.CreatedAt,
		Score:        s.Score,
		Reason:       s.Reason,
	}
	if v.Author != nil {
		rec.Author = &AuthorSummary{
			ID:          v.Author.ID,
			Username:    v.Author.Username,
			DisplayName: v.Author.DisplayName,
			AvatarURL:   a.resolve(v.Author.AvatarKey),
		}
	}
	return rec
}

// resolve maps storage keys to public URLs; absolute URLs pass through.
func (a *Assembler) resolve(key string) string {
	if key == "" || a.urls == nil || strings.Contains(key, "://") {
		return key
	}
	return a.urls.GetURL(key)
}

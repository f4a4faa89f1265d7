package service

import (
	"context"

	"github.com/timmy/vidfeed/internal/domain"
)

// CandidateStore is the read-only query surface feed ranking depends on.
// repository.CandidateRepository implements it.
type CandidateStore interface {
	FindVideos(ctx context.Context, q domain.VideoQuery) ([]domain.Video, error)
	GetVideosByIDs(ctx context.Context, ids []string) ([]domain.Video, error)
	FollowingIDs(ctx context.Context, followerID string) ([]string, error)
	FollowerIDs(ctx context.Context, followingID string) ([]string, error)
	RecentLikes(ctx context.Context, userID string, limit int) ([]domain.LikedVideo, error)
	LikedVideoIDs(ctx context.Context, userID string, videoIDs []string) ([]string, error)
	AuthorVideoCounts(ctx context.Context, videoIDs []string) (map[string]int64, error)
}

// MediaURLResolver turns a storage key into a public URL.
type MediaURLResolver interface {
	GetURL(key string) string
}

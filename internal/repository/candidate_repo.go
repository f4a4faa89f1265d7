package repository

import (
	"context"
	"fmt"

	"github.com/timmy/vidfeed/internal/domain"
	"gorm.io/gorm"
)

// CandidateRepository serves the read-only queries behind feed ranking.
type CandidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository creates a new CandidateRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CandidateRepository: repository instance bound to db.
func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// FindVideos returns a bounded candidate pool with like/comment counts and
// hashtags attached.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - q: filters, ordering and limit.
// Returns:
//   - []domain.Video: matching rows in query order.
//   - error: non-nil if any query fails.
func (r *CandidateRepository) FindVideos(ctx context.Context, q domain.VideoQuery) ([]domain.Video, error) {
	if q.MatchesNothing() {
		return []domain.Video{}, nil
	}

	db := r.db.WithContext(ctx)
	query := db.Model(&domain.Video{}).Preload("Hashtags")

	if q.EligibleOnly {
		query = eligible(query)
	}
	if !q.CreatedAfter.IsZero() {
		query = query.Where("videos.created_at >= ?", q.CreatedAfter.UTC())
	}
	if len(q.ExcludeIDs) > 0 {
		query = query.Where("videos.id NOT IN ?", q.ExcludeIDs)
	}
	if q.IDIn != nil {
		query = query.Where("videos.id IN ?", q.IDIn)
	}
	if q.AuthorIn != nil {
		query = query.Where("videos.author_id IN ?", q.AuthorIn)
	}
	if q.HashtagIn != nil {
		tagged := db.Model(&domain.VideoHashtag{}).
			Select("video_id").
			Where("hashtag_id IN ?", q.HashtagIn)
		query = query.Where("videos.id IN (?)", tagged)
	}
	if q.AuthorNotEqual != "" {
		query = query.Where("videos.author_id <> ?", q.AuthorNotEqual)
	}

	switch q.OrderBy {
	case domain.OrderNewest:
		query = query.Order("videos.created_at DESC").Order("videos.id")
	default:
		query = query.Order("videos.view_count DESC").Order("videos.created_at DESC").Order("videos.id")
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var videos []domain.Video
	if err := query.Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("find videos: %w", err)
	}
	if err := r.attachCounts(ctx, videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// GetVideosByIDs loads eligible videos with author, hashtags and counts.
// Row order is unspecified; callers re-sort.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ids: video identifiers.
// Returns:
//   - []domain.Video: eligible rows among ids.
//   - error: non-nil if any query fails.
func (r *CandidateRepository) GetVideosByIDs(ctx context.Context, ids []string) ([]domain.Video, error) {
	if len(ids) == 0 {
		return []domain.Video{}, nil
	}
	var videos []domain.Video
	err := eligible(r.db.WithContext(ctx).Model(&domain.Video{})).
		Preload("Author").
		Preload("Hashtags").
		Where("videos.id IN ?", ids).
		Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("get videos by ids: %w", err)
	}
	if err := r.attachCounts(ctx, videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// FollowingIDs returns the ids of accounts followerID follows.
func (r *CandidateRepository) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	ids := []string{}
	if err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("following ids: %w", err)
	}
	return ids, nil
}

// FollowerIDs returns the ids of accounts following followingID.
func (r *CandidateRepository) FollowerIDs(ctx context.Context, followingID string) ([]string, error) {
	ids := []string{}
	if err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("following_id = ?", followingID).
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("follower ids: %w", err)
	}
	return ids, nil
}

// RecentLikes returns the user's most recent likes, newest first, each with
// the liked video's hashtag ids.
func (r *CandidateRepository) RecentLikes(ctx context.Context, userID string, limit int) ([]domain.LikedVideo, error) {
	db := r.db.WithContext(ctx)

	var likes []domain.Like
	query := db.Where("user_id = ?", userID).Order("created_at DESC").Order("video_id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("recent likes: %w", err)
	}
	if len(likes) == 0 {
		return []domain.LikedVideo{}, nil
	}

	videoIDs := make([]string, len(likes))
	for i, l := range likes {
		videoIDs[i] = l.VideoID
	}
	var links []domain.VideoHashtag
	if err := db.Where("video_id IN ?", videoIDs).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("recent likes hashtags: %w", err)
	}
	tags := make(map[string][]string, len(likes))
	for _, link := range links {
		tags[link.VideoID] = append(tags[link.VideoID], link.HashtagID)
	}

	out := make([]domain.LikedVideo, len(likes))
	for i, l := range likes {
		out[i] = domain.LikedVideo{VideoID: l.VideoID, LikedAt: l.CreatedAt, HashtagIDs: tags[l.VideoID]}
	}
	return out, nil
}

// LikedVideoIDs returns the subset of videoIDs the user has liked.
func (r *CandidateRepository) LikedVideoIDs(ctx context.Context, userID string, videoIDs []string) ([]string, error) {
	ids := []string{}
	if len(videoIDs) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ? AND video_id IN ?", userID, videoIDs).
		Pluck("video_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("liked video ids: %w", err)
	}
	return ids, nil
}

// AuthorVideoCounts maps each video id to its author's total number of
// videos, counting removed and unprocessed uploads too.
func (r *CandidateRepository) AuthorVideoCounts(ctx context.Context, videoIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(videoIDs))
	if len(videoIDs) == 0 {
		return counts, nil
	}
	db := r.db.WithContext(ctx)

	var owners []struct {
		ID       string
		AuthorID string
	}
	if err := db.Model(&domain.Video{}).
		Select("id, author_id").
		Where("id IN ?", videoIDs).
		Scan(&owners).Error; err != nil {
		return nil, fmt.Errorf("author video counts: %w", err)
	}
	if len(owners) == 0 {
		return counts, nil
	}

	authorSet := make(map[string]struct{}, len(owners))
	authors := make([]string, 0, len(owners))
	for _, o := range owners {
		if _, ok := authorSet[o.AuthorID]; ok {
			continue
		}
		authorSet[o.AuthorID] = struct{}{}
		authors = append(authors, o.AuthorID)
	}

	var totals []struct {
		AuthorID string
		N        int64
	}
	if err := db.Model(&domain.Video{}).
		Select("author_id, COUNT(*) AS n").
		Where("author_id IN ?", authors).
		Group("author_id").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("author video counts: %w", err)
	}
	byAuthor := make(map[string]int64, len(totals))
	for _, t := range totals {
		byAuthor[t.AuthorID] = t.N
	}
	for _, o := range owners {
		counts[o.ID] = byAuthor[o.AuthorID]
	}
	return counts, nil
}

// attachCounts fills LikeCount and CommentCount with two grouped queries.
func (r *CandidateRepository) attachCounts(ctx context.Context, videos []domain.Video) error {
	if len(videos) == 0 {
		return nil
	}
	ids := make([]string, len(videos))
	for i := range videos {
		ids[i] = videos[i].ID
	}

	likes, err := r.countBy(ctx, &domain.Like{}, ids)
	if err != nil {
		return fmt.Errorf("like counts: %w", err)
	}
	comments, err := r.countBy(ctx, &domain.Comment{}, ids)
	if err != nil {
		return fmt.Errorf("comment counts: %w", err)
	}
	for i := range videos {
		videos[i].LikeCount = likes[videos[i].ID]
		videos[i].CommentCount = comments[videos[i].ID]
	}
	return nil
}

func (r *CandidateRepository) countBy(ctx context.Context, model interface{}, videoIDs []string) (map[string]int64, error) {
	var rows []struct {
		VideoID string
		N       int64
	}
	if err := r.db.WithContext(ctx).Model(model).
		Select("video_id, COUNT(*) AS n").
		Where("video_id IN ?", videoIDs).
		Group("video_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.VideoID] = row.N
	}
	return out, nil
}

func eligible(query *gorm.DB) *gorm.DB {
	return query.
		Where("videos.is_removed = ? AND videos.is_flagged = ?", false, false).
		Where("videos.video_url NOT LIKE ? AND videos.video_url NOT LIKE ?",
			domain.MediaURLProcessing+"%", domain.MediaURLError+"%")
}

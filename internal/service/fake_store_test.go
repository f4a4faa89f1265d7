package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/timmy/vidfeed/internal/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeStore is an in-memory CandidateStore honoring VideoQuery semantics.
type fakeStore struct {
	mu      sync.Mutex
	videos  []domain.Video
	users   map[string]*domain.User
	follows []domain.Follow
	likes   []domain.Like

	calls   int
	queries []domain.VideoQuery
	failOn  string
	failErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*domain.User)}
}

func (f *fakeStore) addVideo(id, author string, age time.Duration, views, likes, comments int64, tags ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[author]; !ok {
		f.users[author] = &domain.User{ID: author, Username: author}
	}
	v := domain.Video{
		ID:           id,
		AuthorID:     author,
		VideoURL:     "videos/" + id + ".mp4",
		ViewCount:    views,
		LikeCount:    likes,
		CommentCount: comments,
		CreatedAt:    testNow.Add(-age),
	}
	for _, tag := range tags {
		v.Hashtags = append(v.Hashtags, domain.Hashtag{ID: tag, Name: tag})
	}
	f.videos = append(f.videos, v)
}

func (f *fakeStore) mutate(id string, fn func(v *domain.Video)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.videos {
		if f.videos[i].ID == id {
			fn(&f.videos[i])
		}
	}
}

func (f *fakeStore) follow(follower, following string) {
	f.follows = append(f.follows, domain.Follow{FollowerID: follower, FollowingID: following})
}

func (f *fakeStore) like(user, video string, age time.Duration) {
	f.likes = append(f.likes, domain.Like{UserID: user, VideoID: video, CreatedAt: testNow.Add(-age)})
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn == method {
		return f.failErr
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (f *fakeStore) FindVideos(_ context.Context, q domain.VideoQuery) ([]domain.Video, error) {
	if err := f.enter("FindVideos"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if q.MatchesNothing() {
		return []domain.Video{}, nil
	}

	out := []domain.Video{}
	for _, v := range f.videos {
		switch {
		case q.EligibleOnly && !v.IsEligible():
		case !q.CreatedAfter.IsZero() && v.CreatedAt.Before(q.CreatedAfter):
		case contains(q.ExcludeIDs, v.ID):
		case q.IDIn != nil && !contains(q.IDIn, v.ID):
		case q.AuthorIn != nil && !contains(q.AuthorIn, v.AuthorID):
		case q.AuthorNotEqual != "" && v.AuthorID == q.AuthorNotEqual:
		case q.HashtagIn != nil && !sharesTag(v, q.HashtagIn):
		default:
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.OrderBy == domain.OrderPopular && a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func sharesTag(v domain.Video, tags []string) bool {
	for _, id := range v.HashtagIDs() {
		if contains(tags, id) {
			return true
		}
	}
	return false
}

func (f *fakeStore) GetVideosByIDs(_ context.Context, ids []string) ([]domain.Video, error) {
	if err := f.enter("GetVideosByIDs"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Video{}
	// Reverse order on purpose: callers must re-sort.
	for i := len(f.videos) - 1; i >= 0; i-- {
		v := f.videos[i]
		if contains(ids, v.ID) && v.IsEligible() {
			v.Author = f.users[v.AuthorID]
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) FollowingIDs(_ context.Context, followerID string) ([]string, error) {
	if err := f.enter("FollowingIDs"); err != nil {
		return nil, err
	}
	out := []string{}
	for _, e := range f.follows {
		if e.FollowerID == followerID {
			out = append(out, e.FollowingID)
		}
	}
	return out, nil
}

func (f *fakeStore) FollowerIDs(_ context.Context, followingID string) ([]string, error) {
	if err := f.enter("FollowerIDs"); err != nil {
		return nil, err
	}
	out := []string{}
	for _, e := range f.follows {
		if e.FollowingID == followingID {
			out = append(out, e.FollowerID)
		}
	}
	return out, nil
}

func (f *fakeStore) RecentLikes(_ context.Context, userID string, limit int) ([]domain.LikedVideo, error) {
	if err := f.enter("RecentLikes"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var likes []domain.Like
	for _, l := range f.likes {
		if l.UserID == userID {
			likes = append(likes, l)
		}
	}
	sort.SliceStable(likes, func(i, j int) bool { return likes[i].CreatedAt.After(likes[j].CreatedAt) })
	if limit > 0 && len(likes) > limit {
		likes = likes[:limit]
	}
	out := make([]domain.LikedVideo, 0, len(likes))
	for _, l := range likes {
		lv := domain.LikedVideo{VideoID: l.VideoID, LikedAt: l.CreatedAt}
		for _, v := range f.videos {
			if v.ID == l.VideoID {
				lv.HashtagIDs = v.HashtagIDs()
			}
		}
		out = append(out, lv)
	}
	return out, nil
}

func (f *fakeStore) LikedVideoIDs(_ context.Context, userID string, videoIDs []string) ([]string, error) {
	if err := f.enter("LikedVideoIDs"); err != nil {
		return nil, err
	}
	out := []string{}
	for _, l := range f.likes {
		if l.UserID == userID && contains(videoIDs, l.VideoID) {
			out = append(out, l.VideoID)
		}
	}
	return out, nil
}

func (f *fakeStore) AuthorVideoCounts(_ context.Context, videoIDs []string) (map[string]int64, error) {
	if err := f.enter("AuthorVideoCounts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	perAuthor := map[string]int64{}
	for _, v := range f.videos {
		perAuthor[v.AuthorID]++
	}
	out := map[string]int64{}
	for _, v := range f.videos {
		if contains(videoIDs, v.ID) {
			out[v.ID] = perAuthor[v.AuthorID]
		}
	}
	return out, nil
}

package domain

// Reason tags attached to a VideoScore by the ranking passes.
const (
	ReasonTrending       = "trending"
	ReasonRecent         = "recent"
	ReasonFollowing      = "following"
	ReasonSimilarContent = "similar-content"
	ReasonNewCreator     = "new-creator"
)

// VideoScore is one candidate's accumulated ranking score. It lives for a
// single ranking pass and is never persisted.
type VideoScore struct {
	VideoID string  `json:"video_id"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// Add folds a contribution into the score and appends tag to the reason trail.
func (s *VideoScore) Add(delta float64, tag string) {
	s.Score += delta
	if tag == "" {
		return
	}
	if s.Reason == "" {
		s.Reason = tag
		return
	}
	s.Reason += ", " + tag
}

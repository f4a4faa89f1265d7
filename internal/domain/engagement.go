package domain

import "time"

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	FollowerID  string    `gorm:"type:text;primaryKey" json:"follower_id"`
	FollowingID string    `gorm:"type:text;primaryKey;index:idx_follows_following" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Follow.
func (Follow) TableName() string {
	return "follows"
}

// Like records that UserID liked VideoID. One row per pair.
type Like struct {
	UserID    string    `gorm:"type:text;primaryKey" json:"user_id"`
	VideoID   string    `gorm:"type:text;primaryKey;index:idx_likes_video" json:"video_id"`
	CreatedAt time.Time `gorm:"index:idx_likes_created" json:"created_at"`
}

// TableName returns the database table name for Like.
func (Like) TableName() string {
	return "likes"
}

// Comment is only counted by the feed; bodies are never read.
type Comment struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	VideoID   string    `gorm:"type:text;not null;index:idx_comments_video" json:"video_id"`
	UserID    string    `gorm:"type:text;not null" json:"user_id"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string {
	return "comments"
}

// LikedVideo is a like joined to the liked video's hashtag ids.
type LikedVideo struct {
	VideoID    string
	LikedAt    time.Time
	HashtagIDs []string
}

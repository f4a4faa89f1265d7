package domain

import (
	"strings"
	"time"
)

// Media URL prefixes written by the upload pipeline while a video is not playable.
const (
	MediaURLProcessing = "processing://"
	MediaURLError      = "error://"
)

// Video is an uploaded short video. LikeCount and CommentCount are derived
// by the repository and never persisted.
type Video struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	AuthorID     string    `gorm:"type:text;not null;index:idx_videos_author" json:"author_id"`
	Caption      string    `gorm:"type:text" json:"caption"`
	VideoURL     string    `gorm:"type:text;not null" json:"video_url"`
	ThumbnailURL string    `gorm:"type:text" json:"thumbnail_url"`
	ViewCount    int64     `gorm:"not null;default:0" json:"view_count"`
	IsRemoved    bool      `gorm:"not null;default:false;index:idx_videos_moderation" json:"is_removed"`
	IsFlagged    bool      `gorm:"not null;default:false;index:idx_videos_moderation" json:"is_flagged"`
	CreatedAt    time.Time `gorm:"index:idx_videos_created" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Hashtags []Hashtag `gorm:"many2many:video_hashtags" json:"hashtags,omitempty"`

	LikeCount    int64 `gorm:"-" json:"like_count"`
	CommentCount int64 `gorm:"-" json:"comment_count"`
}

// TableName returns the database table name for Video.
func (Video) TableName() string {
	return "videos"
}

// IsEligible reports whether the video may be ranked: not removed, not
// flagged, and its media is neither still processing nor failed.
func (v *Video) IsEligible() bool {
	if v.IsRemoved || v.IsFlagged {
		return false
	}
	return !IsSentinelMediaURL(v.VideoURL)
}

// IsSentinelMediaURL reports whether url is an unprocessed/errored placeholder.
func IsSentinelMediaURL(url string) bool {
	return strings.HasPrefix(url, MediaURLProcessing) || strings.HasPrefix(url, MediaURLError)
}

// HashtagIDs returns the ids of the video's hashtags.
func (v *Video) HashtagIDs() []string {
	ids := make([]string, len(v.Hashtags))
	for i, h := range v.Hashtags {
		ids[i] = h.ID
	}
	return ids
}

// Hashtag is a normalized tag name.
type Hashtag struct {
	ID   string `gorm:"type:text;primaryKey" json:"id"`
	Name string `gorm:"type:text;not null;uniqueIndex:idx_hashtags_name" json:"name"`
}

// TableName returns the database table name for Hashtag.
func (Hashtag) TableName() string {
	return "hashtags"
}

// VideoHashtag is the join row between videos and hashtags.
type VideoHashtag struct {
	VideoID   string `gorm:"type:text;primaryKey"`
	HashtagID string `gorm:"type:text;primaryKey;index:idx_video_hashtags_hashtag"`
}

// TableName returns the database table name for VideoHashtag.
func (VideoHashtag) TableName() string {
	return "video_hashtags"
}

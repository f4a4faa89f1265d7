package domain

import "time"

// User is an account that can author, like, comment and follow.
type User struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Username    string    `gorm:"type:text;not null;uniqueIndex:idx_users_username" json:"username"`
	DisplayName string    `gorm:"type:text" json:"display_name"`
	AvatarKey   string    `gorm:"type:text" json:"avatar_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string {
	return "users"
}

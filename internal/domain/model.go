package domain

import (
	"time"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID               string  `gorm:"type:varchar(36);primaryKey"`
	Username         string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email            string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name             string  `gorm:"type:varchar(100);not null"`
	PasswordHash     string  `gorm:"type:varchar(255);not null"`
	Bio              *string `gorm:"type:text"`
	Link             *string `gorm:"type:varchar(255)"`
	ProfileImageLink *string `gorm:"type:varchar(255)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (UserModel) TableName() string { return "users" }

// PostModel is the GORM model for the posts table.
// Posts are owned by their author: deleting the user cascades here,
// and deleting a post cascades to its comments.
type PostModel struct {
	ID        string  `gorm:"type:varchar(36);primaryKey"`
	UserID    string  `gorm:"type:varchar(36);not null;index"`
	ImageLink string  `gorm:"type:varchar(512);not null;index"`
	Caption   *string `gorm:"type:text"`
	Likes     int64   `gorm:"not null;default:0"`
	CreatedAt time.Time

	User UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (PostModel) TableName() string { return "posts" }

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	PostID    string `gorm:"type:varchar(36);not null;index"`
	UserID    string `gorm:"type:varchar(36);not null;index"`
	Comment   string `gorm:"type:text;not null"`
	CreatedAt time.Time

	Post PostModel `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (CommentModel) TableName() string { return "comments" }

// FollowModel is the GORM model for the follows table.
// One edge means "follower follows following". The composite unique index
// rejects duplicate edges; self-follows are rejected at the service layer.
type FollowModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	FollowerID  string `gorm:"column:follower_id;type:varchar(36);not null;uniqueIndex:uidx_follow_pair"`
	FollowingID string `gorm:"column:following_id;type:varchar(36);not null;uniqueIndex:uidx_follow_pair"`
	CreatedAt   time.Time

	Follower  UserModel `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following UserModel `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

func (FollowModel) TableName() string { return "follows" }

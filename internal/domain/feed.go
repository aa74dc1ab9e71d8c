package domain

import (
	"time"
)

// Post represents a post entity.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ImageLink string    `json:"image_link"`
	Caption   *string   `json:"caption,omitempty"`
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDomain converts PostModel to domain Post.
func (m *PostModel) ToDomain() *Post {
	return &Post{
		ID:        m.ID,
		UserID:    m.UserID,
		ImageLink: m.ImageLink,
		Caption:   m.Caption,
		Likes:     m.Likes,
		CreatedAt: m.CreatedAt,
	}
}

// CommentEntry is a resolved comment: text plus the commenter's username.
type CommentEntry struct {
	Comment  string `json:"comment"`
	Username string `json:"username"`
}

// FeedEntry is one post in the explore or home feed, joined with its author
// and resolved comment thread.
type FeedEntry struct {
	PostID    string         `json:"post_id"`
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	ImageLink string         `json:"image_link"`
	Likes     int64          `json:"likes"`
	Comments  []CommentEntry `json:"comments"`
	Caption   *string        `json:"caption,omitempty"`
}

// ProfilePost is one post in a profile feed.
type ProfilePost struct {
	PostID    string         `json:"post_id"`
	ImageLink string         `json:"image_link"`
	Likes     int64          `json:"likes"`
	Comments  []CommentEntry `json:"comments"`
	Caption   *string        `json:"caption,omitempty"`
}

// ProfileData is a user's profile summary.
type ProfileData struct {
	Username         string  `json:"username"`
	Name             string  `json:"name"`
	FollowersCount   int64   `json:"followers_count"`
	FollowingCount   int64   `json:"following_count"`
	Bio              *string `json:"bio,omitempty"`
	Link             *string `json:"link,omitempty"`
	ProfileImageLink *string `json:"profile_image_link,omitempty"`
	Email            string  `json:"email"`
}

// ProfileResponse is the composite result of a profile feed.
type ProfileResponse struct {
	UserData  ProfileData   `json:"user_data"`
	UserPosts []ProfilePost `json:"user_posts"`
}

// CreatePostRequest represents a post creation request.
type CreatePostRequest struct {
	ImageLink string  `json:"image_link" binding:"required"`
	Caption   *string `json:"caption"`
}

// AddCommentRequest represents a comment creation request.
type AddCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// LikeRequest selects the like or unlike operation on a post.
type LikeRequest struct {
	Operation string `json:"operation" binding:"required,oneof=like unlike"`
}

// HomeFeedRequest lists the emails of followed users.
type HomeFeedRequest struct {
	Following []string `json:"following"`
}

// UpdateFollowRequest represents a follow-graph mutation keyed by email.
type UpdateFollowRequest struct {
	TargetEmail string `json:"target_email" binding:"required,email"`
	Operation   string `json:"operation" binding:"required"`
}

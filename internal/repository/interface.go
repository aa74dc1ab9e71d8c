package repository

import (
	"context"
	"errors"

	"example.com/snapgram/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrUsernameExists   = errors.New("username already exists")
	ErrAlreadyFollowing = errors.New("already following")
	ErrFollowNotFound   = errors.New("follow relationship not found")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByEmails resolves a set of emails in one query. Missing emails are
	// simply absent from the result map; callers decide whether that is fatal.
	GetByEmails(ctx context.Context, emails []string) (map[string]*domain.User, error)
	// GetByIDs resolves a set of user IDs in one query, keyed by ID.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	ListAll(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	GetByImageLink(ctx context.Context, imageLink string) (*domain.Post, error)
	ListByAuthor(ctx context.Context, userID string) ([]*domain.Post, error)
	ListByAuthors(ctx context.Context, userIDs []string) ([]*domain.Post, error)
	ListAll(ctx context.Context) ([]*domain.Post, error)
	// IncrementLikes atomically adds one like and returns the new count.
	IncrementLikes(ctx context.Context, postID string) (int64, error)
	// DecrementLikes atomically removes one like, never going below zero,
	// and returns the new count.
	DecrementLikes(ctx context.Context, postID string) (int64, error)
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.CommentModel) error
	// ListForPost returns the comments of one post joined with each
	// commenter's username.
	ListForPost(ctx context.Context, postID string) ([]domain.CommentEntry, error)
	// ListForPosts performs the same join for a whole post set in one query,
	// keyed by post ID.
	ListForPosts(ctx context.Context, postIDs []string) (map[string][]domain.CommentEntry, error)
}

// FollowRepository defines persistence operations for follow relationships.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
	// CountFollowersBatch returns follower counts for a user set in one
	// grouped query. Users with no followers map to zero.
	CountFollowersBatch(ctx context.Context, userIDs []string) (map[string]int64, error)
}

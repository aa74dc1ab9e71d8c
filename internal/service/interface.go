package service

import (
	"context"
	"errors"

	"example.com/snapgram/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrSelfFollow         = errors.New("cannot follow yourself")
	ErrAlreadyFollowing   = errors.New("already following")
)

// UserService defines account and identity business logic.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	SearchUsers(ctx context.Context) ([]domain.SearchUserResult, error)
}

// SocialGraphService defines the business logic for the follow graph.
type SocialGraphService interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	// UpdateFollow is the email-keyed mutation surface: "follow" inserts an
	// edge, "unfollow" removes it, any other operation is an acknowledged
	// no-op.
	UpdateFollow(ctx context.Context, targetEmail, shooterEmail, operation string) error
	FollowersCount(ctx context.Context, userID string) (int64, error)
	FollowingCount(ctx context.Context, userID string) (int64, error)
}

// PostService defines content and comment business logic.
type PostService interface {
	CreatePost(ctx context.Context, userID string, req *domain.CreatePostRequest) (*domain.Post, error)
	AddComment(ctx context.Context, userID, postID, text string) (string, error)
	CommentsForPost(ctx context.Context, postID string) ([]domain.CommentEntry, error)
	// Like applies "like" (+1) or "unlike" (-1, floored at zero) atomically
	// server-side and returns the new count.
	Like(ctx context.Context, postID, operation string) (int64, error)
	LookupByImage(ctx context.Context, imageLink string) (*domain.Post, error)
}

// FeedService defines the read-only feed composition layer.
type FeedService interface {
	Explore(ctx context.Context) ([]domain.FeedEntry, error)
	Home(ctx context.Context, followingEmails []string) ([]domain.FeedEntry, error)
	Profile(ctx context.Context, userEmail string) (*domain.ProfileResponse, error)
}

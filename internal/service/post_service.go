package service

import (
	"context"
	"errors"

	"example.com/snapgram/internal/audit"
	"example.com/snapgram/internal/domain"
	"example.com/snapgram/internal/repository"
	"example.com/snapgram/pkg/log"
)

// postServiceImpl implements PostService.
type postServiceImpl struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository, comments repository.CommentRepository) PostService {
	return &postServiceImpl{
		posts:    posts,
		comments: comments,
	}
}

// CreatePost inserts a new post for the author. Likes start at zero.
func (s *postServiceImpl) CreatePost(ctx context.Context, userID string, req *domain.CreatePostRequest) (*domain.Post, error) {
	l := log.Ctx(ctx)

	post := &domain.Post{
		UserID:    userID,
		ImageLink: req.ImageLink,
		Caption:   req.Caption,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to create post")
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreatePost, userID, "post created")
	return post, nil
}

// AddComment persists the caller-supplied comment text against the post and
// returns the new comment ID.
func (s *postServiceImpl) AddComment(ctx context.Context, userID, postID, text string) (string, error) {
	l := log.Ctx(ctx)

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return "", ErrPostNotFound
		}
		return "", err
	}

	comment := &domain.CommentModel{
		PostID:  postID,
		UserID:  userID,
		Comment: text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		l.Error().Err(err).Str(log.FieldPostID, postID).Msg("failed to add comment")
		return "", err
	}

	audit.LogWithDetail(ctx, audit.ActionComment, userID, postID, "comment added")
	return comment.ID, nil
}

// CommentsForPost returns the post's comment thread with resolved usernames.
func (s *postServiceImpl) CommentsForPost(ctx context.Context, postID string) ([]domain.CommentEntry, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.comments.ListForPost(ctx, postID)
}

// Like applies the requested operation as a server-side atomic update and
// returns the new count. The counter never goes below zero.
func (s *postServiceImpl) Like(ctx context.Context, postID, operation string) (int64, error) {
	l := log.Ctx(ctx)

	var (
		count int64
		err   error
	)
	switch operation {
	case "like":
		count, err = s.posts.IncrementLikes(ctx, postID)
	case "unlike":
		count, err = s.posts.DecrementLikes(ctx, postID)
	default:
		// Binding validation rejects other values before we get here.
		return 0, errors.New("unsupported like operation: " + operation)
	}

	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return 0, ErrPostNotFound
		}
		l.Error().Err(err).Str(log.FieldPostID, postID).Msg("failed to update likes")
		return 0, err
	}

	audit.LogWithDetail(ctx, audit.ActionLikePost, "", postID, operation)
	return count, nil
}

// LookupByImage resolves a post from its image reference. Kept for clients
// that only hold the display URL; mutations use the post ID.
func (s *postServiceImpl) LookupByImage(ctx context.Context, imageLink string) (*domain.Post, error) {
	post, err := s.posts.GetByImageLink(ctx, imageLink)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// Ensure interface is satisfied at compile time.
var _ PostService = (*postServiceImpl)(nil)

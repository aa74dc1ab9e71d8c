package service

import (
	"context"
	"errors"
	"fmt"

	"example.com/snapgram/internal/domain"
	"example.com/snapgram/internal/repository"
	"example.com/snapgram/pkg/log"
)

// feedServiceImpl implements FeedService. It is a read-only composition
// layer: every feed is assembled from one post query, one batched
// comments×users join, and (for profiles) the follow-graph counts.
type feedServiceImpl struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	graph    SocialGraphService
}

// NewFeedService creates a new feed service.
func NewFeedService(users repository.UserRepository, posts repository.PostRepository, comments repository.CommentRepository, graph SocialGraphService) FeedService {
	return &feedServiceImpl{
		users:    users,
		posts:    posts,
		comments: comments,
		graph:    graph,
	}
}

// Explore returns a feed entry for every post in the store, most recent
// first.
func (s *feedServiceImpl) Explore(ctx context.Context) ([]domain.FeedEntry, error) {
	l := log.Ctx(ctx)

	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to list posts")
		return nil, err
	}

	authorIDs := collectAuthorIDs(posts)
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		l.Error().Err(err).Msg("failed to resolve post authors")
		return nil, err
	}

	return s.assemble(ctx, posts, authors)
}

// Home returns the feed entries for every post authored by the given set of
// followed users, identified by email. Any unresolvable email fails the
// whole call.
func (s *feedServiceImpl) Home(ctx context.Context, followingEmails []string) ([]domain.FeedEntry, error) {
	l := log.Ctx(ctx)

	if len(followingEmails) == 0 {
		return []domain.FeedEntry{}, nil
	}

	byEmail, err := s.users.GetByEmails(ctx, followingEmails)
	if err != nil {
		l.Error().Err(err).Msg("failed to resolve followed users")
		return nil, err
	}

	authors := make(map[string]*domain.User, len(byEmail))
	authorIDs := make([]string, 0, len(followingEmails))
	for _, email := range followingEmails {
		user, ok := byEmail[email]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		if _, seen := authors[user.ID]; !seen {
			authors[user.ID] = user
			authorIDs = append(authorIDs, user.ID)
		}
	}

	posts, err := s.posts.ListByAuthors(ctx, authorIDs)
	if err != nil {
		l.Error().Err(err).Msg("failed to list posts for home feed")
		return nil, err
	}

	return s.assemble(ctx, posts, authors)
}

// Profile returns a user's profile summary together with their posts and
// comment threads.
func (s *feedServiceImpl) Profile(ctx context.Context, userEmail string) (*domain.ProfileResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.users.GetByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Msg("failed to resolve profile user")
		return nil, err
	}

	followers, err := s.graph.FollowersCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.graph.FollowingCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByAuthor(ctx, user.ID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to list profile posts")
		return nil, err
	}

	commentsByPost, err := s.commentThreads(ctx, posts)
	if err != nil {
		return nil, err
	}

	userPosts := make([]domain.ProfilePost, 0, len(posts))
	for _, post := range posts {
		userPosts = append(userPosts, domain.ProfilePost{
			PostID:    post.ID,
			ImageLink: post.ImageLink,
			Likes:     post.Likes,
			Comments:  commentsByPost[post.ID],
			Caption:   post.Caption,
		})
	}

	return &domain.ProfileResponse{
		UserData: domain.ProfileData{
			Username:         user.Username,
			Name:             user.Name,
			FollowersCount:   followers,
			FollowingCount:   following,
			Bio:              user.Bio,
			Link:             user.Link,
			ProfileImageLink: user.ProfileImageLink,
			Email:            user.Email,
		},
		UserPosts: userPosts,
	}, nil
}

// assemble joins a post set with its authors and batched comment threads.
// Posts whose author is missing from the map are skipped.
func (s *feedServiceImpl) assemble(ctx context.Context, posts []*domain.Post, authors map[string]*domain.User) ([]domain.FeedEntry, error) {
	commentsByPost, err := s.commentThreads(ctx, posts)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.FeedEntry, 0, len(posts))
	for _, post := range posts {
		author, ok := authors[post.UserID]
		if !ok {
			continue
		}
		entries = append(entries, domain.FeedEntry{
			PostID:    post.ID,
			Username:  author.Username,
			Email:     author.Email,
			ImageLink: post.ImageLink,
			Likes:     post.Likes,
			Comments:  commentsByPost[post.ID],
			Caption:   post.Caption,
		})
	}
	return entries, nil
}

// commentThreads fetches the comment threads for a post set in one query
// and guarantees a non-nil slice per post.
func (s *feedServiceImpl) commentThreads(ctx context.Context, posts []*domain.Post) (map[string][]domain.CommentEntry, error) {
	postIDs := make([]string, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
	}

	byPost, err := s.comments.ListForPosts(ctx, postIDs)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to resolve comment threads")
		return nil, err
	}

	for _, id := range postIDs {
		if byPost[id] == nil {
			byPost[id] = []domain.CommentEntry{}
		}
	}
	return byPost, nil
}

func collectAuthorIDs(posts []*domain.Post) []string {
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		if _, ok := seen[post.UserID]; ok {
			continue
		}
		seen[post.UserID] = struct{}{}
		ids = append(ids, post.UserID)
	}
	return ids
}

// Ensure interface is satisfied at compile time.
var _ FeedService = (*feedServiceImpl)(nil)

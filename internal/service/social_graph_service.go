package service

import (
	"context"
	"errors"
	"fmt"

	"example.com/snapgram/internal/audit"
	"example.com/snapgram/internal/repository"
	"example.com/snapgram/internal/store"
	"example.com/snapgram/pkg/log"
)

// Follow-graph mutation operations accepted by UpdateFollow.
const (
	OpFollow   = "follow"
	OpUnfollow = "unfollow"
)

// socialGraphService implements SocialGraphService.
type socialGraphService struct {
	users repository.UserRepository
	repo  repository.FollowRepository
	store store.FollowStore
}

// NewSocialGraphService creates a new SocialGraphService instance.
func NewSocialGraphService(users repository.UserRepository, repo repository.FollowRepository, followStore store.FollowStore) SocialGraphService {
	return &socialGraphService{
		users: users,
		repo:  repo,
		store: followStore,
	}
}

// Follow creates a follow edge from followerID to followingID. The cached
// follower count of the target is bumped only when already cached; a cache
// miss is later repaired by the read-through in FollowersCount.
func (s *socialGraphService) Follow(ctx context.Context, followerID, followingID string) error {
	l := log.Ctx(ctx)

	if followerID == followingID {
		return ErrSelfFollow
	}

	if err := s.repo.Follow(ctx, followerID, followingID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFollowing) {
			return ErrAlreadyFollowing
		}
		l.Error().Err(err).
			Str("follower_id", followerID).
			Str("following_id", followingID).
			Msg("failed to follow user")
		return err
	}

	if err := s.store.CondIncrFollowersCount(ctx, followingID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, followingID).Msg("failed to bump cached followers count")
	}

	audit.Log(ctx, audit.ActionFollow, followerID, "followed "+followingID)
	return nil
}

// Unfollow removes the follow edge from followerID to followingID. A missing
// edge is not an error: deleting an absent relationship is a no-op.
func (s *socialGraphService) Unfollow(ctx context.Context, followerID, followingID string) error {
	l := log.Ctx(ctx)

	if err := s.repo.Unfollow(ctx, followerID, followingID); err != nil {
		if errors.Is(err, repository.ErrFollowNotFound) {
			return nil
		}
		l.Error().Err(err).
			Str("follower_id", followerID).
			Str("following_id", followingID).
			Msg("failed to unfollow user")
		return err
	}

	if err := s.store.CondDecrFollowersCount(ctx, followingID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, followingID).Msg("failed to drop cached followers count")
	}

	audit.Log(ctx, audit.ActionUnfollow, followerID, "unfollowed "+followingID)
	return nil
}

// UpdateFollow resolves both users by email and applies the requested
// operation. Operations other than "follow" and "unfollow" are acknowledged
// without touching the graph.
func (s *socialGraphService) UpdateFollow(ctx context.Context, targetEmail, shooterEmail, operation string) error {
	target, err := s.users.GetByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, targetEmail)
		}
		return err
	}

	shooter, err := s.users.GetByEmail(ctx, shooterEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, shooterEmail)
		}
		return err
	}

	switch operation {
	case OpFollow:
		return s.Follow(ctx, shooter.ID, target.ID)
	case OpUnfollow:
		return s.Unfollow(ctx, shooter.ID, target.ID)
	default:
		return nil
	}
}

// FollowersCount returns the number of followers for userID, preferring the
// cache. On a miss the count is read from the database and the cache is
// populated. Every read records a hot-key access for the reconciler.
func (s *socialGraphService) FollowersCount(ctx context.Context, userID string) (int64, error) {
	l := log.Ctx(ctx)

	if err := s.store.RecordAccess(ctx, userID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to record hot key access")
	}

	count, found, err := s.store.GetFollowersCount(ctx, userID)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("cache read failed, falling back to db")
	}
	if found {
		return count, nil
	}

	count, err = s.repo.CountFollowers(ctx, userID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to count followers")
		return 0, err
	}

	if err := s.store.SetFollowersCount(ctx, userID, count); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to populate followers count cache")
	}

	return count, nil
}

// FollowingCount returns how many users userID follows.
func (s *socialGraphService) FollowingCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountFollowing(ctx, userID)
}

// Ensure interface is satisfied at compile time.
var _ SocialGraphService = (*socialGraphService)(nil)

package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"example.com/snapgram/internal/domain"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "Duplicate entry")
}

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-backed follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Follow creates a follow edge between two users. The composite unique
// index on (follower_id, following_id) rejects duplicate edges.
func (r *GormFollowRepository) Follow(ctx context.Context, followerID, followingID string) error {
	model := domain.FollowModel{
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyFollowing
		}
		return err
	}
	return nil
}

// Unfollow removes the follow edge between two users.
func (r *GormFollowRepository) Unfollow(ctx context.Context, followerID, followingID string) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&domain.FollowModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

// IsFollowing checks if followerID follows followingID.
func (r *GormFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountFollowers returns the number of edges pointing at userID.
func (r *GormFollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountFollowing returns the number of edges originating from userID.
func (r *GormFollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// followerCountRow is the scan target for the grouped follower count query.
type followerCountRow struct {
	FollowingID string
	Count       int64
}

// CountFollowersBatch returns follower counts for a user set in one grouped
// query. Users without followers map to zero.
func (r *GormFollowRepository) CountFollowersBatch(ctx context.Context, userIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(userIDs))
	for _, id := range userIDs {
		counts[id] = 0
	}

	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []followerCountRow
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Select("following_id, COUNT(*) AS count").
		Where("following_id IN ?", userIDs).
		Group("following_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.FollowingID] = row.Count
	}
	return counts, nil
}

// Ensure interface is satisfied at compile time.
var _ FollowRepository = (*GormFollowRepository)(nil)

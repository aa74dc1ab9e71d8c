package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/snapgram/internal/domain"
)

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts a new post with zero likes.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	post.ID = uuid.New().String()
	post.Likes = 0

	model := domain.PostModel{
		ID:        post.ID,
		UserID:    post.UserID,
		ImageLink: post.ImageLink,
		Caption:   post.Caption,
		Likes:     0,
	}
	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return result.Error
	}

	post.CreatedAt = model.CreatedAt
	return nil
}

// GetByID retrieves a post by ID.
func (r *GormPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var model domain.PostModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByImageLink retrieves a post by its image reference. Image links are
// display data and not guaranteed unique; the first match wins. Mutations
// key on the post ID instead.
func (r *GormPostRepository) GetByImageLink(ctx context.Context, imageLink string) (*domain.Post, error) {
	var model domain.PostModel
	result := r.db.WithContext(ctx).First(&model, "image_link = ?", imageLink)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListByAuthor returns all posts by one author, most recent first.
func (r *GormPostRepository) ListByAuthor(ctx context.Context, userID string) ([]*domain.Post, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// ListByAuthors returns all posts by a set of authors in one query,
// most recent first.
func (r *GormPostRepository) ListByAuthors(ctx context.Context, userIDs []string) ([]*domain.Post, error) {
	if len(userIDs) == 0 {
		return []*domain.Post{}, nil
	}
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id IN ?", userIDs))
}

// ListAll returns every post, most recent first.
func (r *GormPostRepository) ListAll(ctx context.Context) ([]*domain.Post, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *GormPostRepository) list(ctx context.Context, tx *gorm.DB) ([]*domain.Post, error) {
	var models []domain.PostModel
	result := tx.Order("created_at DESC").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	posts := make([]*domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].ToDomain())
	}
	return posts, nil
}

// IncrementLikes adds one like in a single UPDATE statement. Concurrent
// increments never lose updates because the counter is mutated in SQL,
// not read-modify-written by the client.
func (r *GormPostRepository) IncrementLikes(ctx context.Context, postID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("id = ?", postID).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrPostNotFound
	}
	return r.readLikes(ctx, postID)
}

// DecrementLikes removes one like, floored at zero, in a single UPDATE.
func (r *GormPostRepository) DecrementLikes(ctx context.Context, postID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("id = ? AND likes > 0", postID).
		UpdateColumn("likes", gorm.Expr("likes - 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	// Zero rows affected means either the post is missing or the counter is
	// already at zero; readLikes distinguishes the two.
	return r.readLikes(ctx, postID)
}

func (r *GormPostRepository) readLikes(ctx context.Context, postID string) (int64, error) {
	var likes int64
	result := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Select("likes").
		Where("id = ?", postID).
		Take(&likes)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, ErrPostNotFound
		}
		return 0, result.Error
	}
	return likes, nil
}

// Ensure interface is satisfied at compile time.
var _ PostRepository = (*GormPostRepository)(nil)

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/snapgram/internal/domain"
)

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-based comment repository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a new comment row.
func (r *GormCommentRepository) Create(ctx context.Context, comment *domain.CommentModel) error {
	comment.ID = uuid.New().String()
	return r.db.WithContext(ctx).Create(comment).Error
}

// commentRow is the scan target for the comments×users join.
type commentRow struct {
	PostID   string
	Comment  string
	Username string
}

// ListForPost returns the comments of one post with resolved usernames.
// The inner join drops comments whose author no longer resolves, matching
// the read shape the feeds expose.
func (r *GormCommentRepository) ListForPost(ctx context.Context, postID string) ([]domain.CommentEntry, error) {
	byPost, err := r.ListForPosts(ctx, []string{postID})
	if err != nil {
		return nil, err
	}
	entries := byPost[postID]
	if entries == nil {
		entries = []domain.CommentEntry{}
	}
	return entries, nil
}

// ListForPosts resolves the comment threads for a whole post set in one
// joined query, keyed by post ID. Posts without comments are absent from
// the result map.
func (r *GormCommentRepository) ListForPosts(ctx context.Context, postIDs []string) (map[string][]domain.CommentEntry, error) {
	byPost := make(map[string][]domain.CommentEntry, len(postIDs))
	if len(postIDs) == 0 {
		return byPost, nil
	}

	var rows []commentRow
	result := r.db.WithContext(ctx).Model(&domain.CommentModel{}).
		Select("comments.post_id, comments.comment, users.username").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id IN ?", postIDs).
		Order("comments.created_at ASC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, row := range rows {
		byPost[row.PostID] = append(byPost[row.PostID], domain.CommentEntry{
			Comment:  row.Comment,
			Username: row.Username,
		})
	}
	return byPost, nil
}

// Ensure interface is satisfied at compile time.
var _ CommentRepository = (*GormCommentRepository)(nil)

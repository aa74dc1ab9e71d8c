package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/snapgram/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user and fills in the generated ID and timestamps.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New().String()

	model := domain.UserToModel(user)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return r.handleError(result.Error)
	}

	user.CreatedAt = model.CreatedAt
	return nil
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByEmail retrieves a user by email.
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByEmails resolves a set of emails in one query.
func (r *GormUserRepository) GetByEmails(ctx context.Context, emails []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(emails))
	if len(emails) == 0 {
		return users, nil
	}

	var models []domain.UserModel
	result := r.db.WithContext(ctx).Where("email IN ?", emails).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	for i := range models {
		users[models[i].Email] = models[i].ToDomain()
	}
	return users, nil
}

// GetByIDs resolves a set of user IDs in one query.
func (r *GormUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var models []domain.UserModel
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	for i := range models {
		users[models[i].ID] = models[i].ToDomain()
	}
	return users, nil
}

// ListAll returns every user.
func (r *GormUserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	var models []domain.UserModel
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	users := make([]*domain.User, 0, len(models))
	for i := range models {
		users = append(users, models[i].ToDomain())
	}
	return users, nil
}

// Delete removes a user. Posts, comments, and follow edges owned by the user
// are removed by the schema's ON DELETE CASCADE constraints.
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// handleError converts database-specific errors to domain errors.
func (r *GormUserRepository) handleError(err error) error {
	errStr := err.Error()

	// PostgreSQL / SQLite unique constraint violation
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "UNIQUE constraint") {
		if strings.Contains(errStr, "email") {
			return ErrEmailExists
		}
		if strings.Contains(errStr, "username") {
			return ErrUsernameExists
		}
	}

	// MySQL unique constraint violation
	if strings.Contains(errStr, "Duplicate entry") {
		if strings.Contains(errStr, "email") {
			return ErrEmailExists
		}
		if strings.Contains(errStr, "username") {
			return ErrUsernameExists
		}
	}

	return err
}

// Ensure interface is satisfied at compile time.
var _ UserRepository = (*GormUserRepository)(nil)

package domain

import (
	"time"
)

// User represents a user entity.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	PasswordHash     string    `json:"-"`
	Bio              *string   `json:"bio,omitempty"`
	Link             *string   `json:"link,omitempty"`
	ProfileImageLink *string   `json:"profile_image_link,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:               m.ID,
		Username:         m.Username,
		Email:            m.Email,
		Name:             m.Name,
		PasswordHash:     m.PasswordHash,
		Bio:              m.Bio,
		Link:             m.Link,
		ProfileImageLink: m.ProfileImageLink,
		CreatedAt:        m.CreatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Name:             u.Name,
		PasswordHash:     u.PasswordHash,
		Bio:              u.Bio,
		Link:             u.Link,
		ProfileImageLink: u.ProfileImageLink,
		CreatedAt:        u.CreatedAt,
	}
}

// RegisterRequest represents an account creation request.
type RegisterRequest struct {
	Username         string  `json:"username" binding:"required,min=3,max=50"`
	Email            string  `json:"email" binding:"required,email"`
	Name             string  `json:"name" binding:"required,max=100"`
	Password         string  `json:"password" binding:"required,min=6"`
	Bio              *string `json:"bio"`
	Link             *string `json:"link"`
	ProfileImageLink *string `json:"profile_image_link"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents an authentication response with tokens.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    int64        `json:"expires_at"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Bio              *string   `json:"bio,omitempty"`
	Link             *string   `json:"link,omitempty"`
	ProfileImageLink *string   `json:"profile_image_link,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Name:             u.Name,
		Bio:              u.Bio,
		Link:             u.Link,
		ProfileImageLink: u.ProfileImageLink,
		CreatedAt:        u.CreatedAt,
	}
}

// SearchUserResult is one row of the user search listing.
type SearchUserResult struct {
	Username         string  `json:"username"`
	FollowersCount   int64   `json:"followers_count"`
	Name             string  `json:"name"`
	ProfileImageLink *string `json:"profile_image_link,omitempty"`
	Email            string  `json:"email"`
}

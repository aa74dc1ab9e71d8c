package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"example.com/snapgram/internal/audit"
	"example.com/snapgram/internal/domain"
	"example.com/snapgram/internal/repository"
	"example.com/snapgram/pkg/jwt"
	"example.com/snapgram/pkg/log"
)

// userServiceImpl implements UserService.
type userServiceImpl struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	tokens  *jwt.Manager
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, follows repository.FollowRepository, tokens *jwt.Manager) UserService {
	return &userServiceImpl{
		users:   users,
		follows: follows,
		tokens:  tokens,
	}
}

// Register creates a new account. The password is stored only as a salted
// bcrypt hash.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Username:         req.Username,
		Email:            req.Email,
		Name:             req.Name,
		PasswordHash:     string(hashedPassword),
		Bio:              req.Bio,
		Link:             req.Link,
		ProfileImageLink: req.ProfileImageLink,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrEmailExists) && !errors.Is(err, repository.ErrUsernameExists) {
			l.Error().Err(err).Msg("failed to create user")
		}
		return nil, err
	}

	accessToken, refreshToken, accessExp, _, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Username)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after register")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")

	return &domain.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
	}, nil
}

// Login authenticates a user. A missing account and a wrong password are
// surfaced identically so callers cannot enumerate registered emails.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, "", req.Email, "login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}

	// bcrypt comparison is constant-time over the hash.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, req.Email, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, accessExp, _, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Username)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after login")
		return nil, err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")

	return &domain.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
	}, nil
}

// SearchUsers lists every user with their follower counts. Counts come from
// a single grouped query over the whole user set.
func (s *userServiceImpl) SearchUsers(ctx context.Context) ([]domain.SearchUserResult, error) {
	l := log.Ctx(ctx)

	users, err := s.users.ListAll(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to list users")
		return nil, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	counts, err := s.follows.CountFollowersBatch(ctx, ids)
	if err != nil {
		l.Error().Err(err).Msg("failed to count followers")
		return nil, err
	}

	results := make([]domain.SearchUserResult, 0, len(users))
	for _, u := range users {
		results = append(results, domain.SearchUserResult{
			Username:         u.Username,
			FollowersCount:   counts[u.ID],
			Name:             u.Name,
			ProfileImageLink: u.ProfileImageLink,
			Email:            u.Email,
		})
	}
	return results, nil
}

// Ensure interface is satisfied at compile time.
var _ UserService = (*userServiceImpl)(nil)

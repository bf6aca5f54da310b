package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/c4gt/bounce/internal/models"
	pkglogger "github.com/c4gt/bounce/pkg/logger"
	"github.com/samber/lo"
)

// UserRepository defines the credential store operations
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// UserProfile represents a user in the HTTP response
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUserProfile strips credentials from a user
func ToUserProfile(u *models.User) *UserProfile {
	return &UserProfile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    lo.EmptyableToPtr(u.Avatar),
		CreatedAt: u.CreatedAt,
	}
}

// UserService handles read-only user lookups
type UserService struct {
	repo   UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// GetUserByEmail retrieves a user profile by email
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*UserProfile, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return ToUserProfile(user), nil
}

// EmailExists reports whether an account is registered for email
func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to check email", slog.Any("error", err))
		return false, models.ErrInternalServer
	}
	return exists, nil
}

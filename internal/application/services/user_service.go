package services

import (
	"context"
	"strings"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// UserService handles user profiles
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Get returns a user profile
func (s *UserService) Get(ctx context.Context, id string) (*entities.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies profile edits for the authenticated user
func (s *UserService) UpdateProfile(ctx context.Context, userID string, updates *entities.User) (*entities.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(updates.DisplayName) == "" {
		return nil, apperrors.NewValidationError("display_name is required")
	}

	user.DisplayName = updates.DisplayName
	user.AvatarURL = updates.AvatarURL
	user.HomeCity = updates.HomeCity
	user.Bio = updates.Bio

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

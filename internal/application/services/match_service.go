package services

import (
	"context"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// MatchService surfaces matches suggested between a user's connections.
// Match generation itself runs inside the database as a stored procedure.
type MatchService struct {
	repo repositories.MatchRepository
}

// NewMatchService creates a new match service
func NewMatchService(repo repositories.MatchRepository) *MatchService {
	return &MatchService{repo: repo}
}

// List returns matches suggested to the user
func (s *MatchService) List(ctx context.Context, userID string, filter repositories.MatchFilter) ([]*entities.Match, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.repo.ListForUser(ctx, userID, filter)
}

// Respond records an accept or decline for a suggested match
func (s *MatchService) Respond(ctx context.Context, userID, matchID string, accept bool) (*entities.Match, error) {
	match, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.UserID != userID {
		return nil, apperrors.NewNotFoundError("match not found")
	}

	status := entities.MatchStatusDeclined
	if accept {
		status = entities.MatchStatusAccepted
	}

	if err := s.repo.UpdateStatus(ctx, matchID, status); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, matchID)
}

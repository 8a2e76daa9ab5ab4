package repositories

import (
	"context"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// MatchFilter narrows match listings
type MatchFilter struct {
	Status entities.MatchStatus
	Limit  int
	Offset int
}

// MatchRepository defines the interface for match data access
type MatchRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Match, error)
	ListForUser(ctx context.Context, userID string, filter MatchFilter) ([]*entities.Match, error)
	UpdateStatus(ctx context.Context, id string, status entities.MatchStatus) error
}

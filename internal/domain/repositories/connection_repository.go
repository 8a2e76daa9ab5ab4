package repositories

import (
	"context"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// ConnectionFilter narrows connection listings
type ConnectionFilter struct {
	Status entities.ConnectionStatus
	Limit  int
	Offset int
}

// ConnectionRepository defines the interface for connection data access
type ConnectionRepository interface {
	Create(ctx context.Context, connection *entities.Connection) error
	GetByID(ctx context.Context, id string) (*entities.Connection, error)
	Accept(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteBetween(ctx context.Context, userA, userB string) error
	ListForUser(ctx context.Context, userID string, filter ConnectionFilter) ([]*entities.Connection, error)
}

// BlockRepository defines the interface for block data access
type BlockRepository interface {
	Upsert(ctx context.Context, block *entities.Block) error
	Delete(ctx context.Context, blockerID, blockedID string) error
	Exists(ctx context.Context, blockerID, blockedID string) (bool, error)
}

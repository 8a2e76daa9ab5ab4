package repositories

import (
	"context"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// SegmentRepository defines the interface for segment data access
type SegmentRepository interface {
	Create(ctx context.Context, segment *entities.Segment) error
	GetByID(ctx context.Context, id string) (*entities.Segment, error)
	Update(ctx context.Context, segment *entities.Segment) error
	Delete(ctx context.Context, id string) error
	ListByItinerary(ctx context.Context, itineraryID string) ([]*entities.Segment, error)
}

// ChecklistRepository defines the interface for checklist item data access
type ChecklistRepository interface {
	Create(ctx context.Context, item *entities.ChecklistItem) error
	GetByID(ctx context.Context, id string) (*entities.ChecklistItem, error)
	Update(ctx context.Context, item *entities.ChecklistItem) error
	Delete(ctx context.Context, id string) error
	ListBySegment(ctx context.Context, segmentID string) ([]*entities.ChecklistItem, error)
}

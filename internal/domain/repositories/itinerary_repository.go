package repositories

import (
	"context"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// ItineraryFilter narrows itinerary listings
type ItineraryFilter struct {
	IncludeArchived bool
	Limit           int
	Offset          int
}

// ItineraryRepository defines the interface for itinerary data access
type ItineraryRepository interface {
	Create(ctx context.Context, itinerary *entities.Itinerary) error
	GetByID(ctx context.Context, id string) (*entities.Itinerary, error)
	Update(ctx context.Context, itinerary *entities.Itinerary) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, filter ItineraryFilter) ([]*entities.Itinerary, error)
}

// ItinerarySearchRepository defines the interface for full-text itinerary search
type ItinerarySearchRepository interface {
	InitSchema(ctx context.Context) error
	Index(ctx context.Context, itinerary *entities.Itinerary, segments []*entities.Segment) error
	Delete(ctx context.Context, itineraryID string) error
	Search(ctx context.Context, ownerID, query string, limit int) ([]*entities.Itinerary, error)
}

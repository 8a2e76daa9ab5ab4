package providers

import (
	"context"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// FlightProvider looks up flight details by flight number and date.
// A nil suggestion with a nil error means no match was found.
type FlightProvider interface {
	LookupFlight(ctx context.Context, query, date string) (*entities.SegmentAutofillSuggestion, error)
}

// TransitProvider looks up train and ground-transport trips.
// A nil suggestion with a nil error means no match was found.
type TransitProvider interface {
	LookupTrip(ctx context.Context, query, date string) (*entities.SegmentAutofillSuggestion, error)
}

// PlaceProvider searches places (hotels, restaurants, activities) by free
// text, parameterized by category and an optional geographic bias.
type PlaceProvider interface {
	LookupPlace(ctx context.Context, query, category string, geo *entities.AutofillContext) (*entities.SegmentAutofillSuggestion, error)
}

package place

import (
	"context"
	"strings"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
)

// MockPlaceProvider serves canned place data for local development
type MockPlaceProvider struct{}

// NewMockPlaceProvider creates a mock place provider
func NewMockPlaceProvider() providers.PlaceProvider {
	return &MockPlaceProvider{}
}

// LookupPlace echoes the query back as a resolved place near the given bias
func (p *MockPlaceProvider) LookupPlace(ctx context.Context, query, category string, geo *entities.AutofillContext) (*entities.SegmentAutofillSuggestion, error) {
	name := strings.TrimSpace(query)
	if name == "" {
		return nil, nil
	}

	address := "123 Example Street"
	lat, lng := 37.7749, -122.4194
	if geo != nil {
		if geo.Latitude != nil {
			lat = *geo.Latitude
		}
		if geo.Longitude != nil {
			lng = *geo.Longitude
		}
	}

	return &entities.SegmentAutofillSuggestion{
		Title:           &name,
		LocationName:    &name,
		LocationAddress: &address,
		LocationLat:     &lat,
		LocationLng:     &lng,
		Metadata: map[string]interface{}{
			"place_id": "mock-" + strings.ToLower(strings.ReplaceAll(name, " ", "-")),
			"category": category,
		},
		Source: "mock-place",
	}, nil
}

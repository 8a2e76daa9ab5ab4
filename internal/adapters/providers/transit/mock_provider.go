package transit

import (
	"context"
	"strings"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
)

// MockTransitProvider serves canned trip data for local development
type MockTransitProvider struct{}

// NewMockTransitProvider creates a mock transit provider
func NewMockTransitProvider() providers.TransitProvider {
	return &MockTransitProvider{}
}

// LookupTrip returns a three-stop trip whose metadata uses the stop_times
// shape, so consecutive stop pairs synthesize into two legs
func (p *MockTransitProvider) LookupTrip(ctx context.Context, query, date string) (*entities.SegmentAutofillSuggestion, error) {
	number := strings.ToUpper(strings.TrimSpace(query))
	if number == "" {
		return nil, nil
	}

	day := date
	if day == "" {
		day = "2025-01-15"
	}

	title := "Train " + number
	agency := "Mock Rail"
	origin := "Central Station"

	return &entities.SegmentAutofillSuggestion{
		Title:           &title,
		ProviderName:    &agency,
		LocationName:    &origin,
		TransportNumber: &number,
		Metadata: map[string]interface{}{
			"stop_times": []interface{}{
				map[string]interface{}{
					"departure":       day + "T09:00",
					"stop":            map[string]interface{}{"name": "Central Station"},
					"trip_short_name": number,
				},
				map[string]interface{}{
					"arrival":         day + "T10:15",
					"departure":       day + "T10:20",
					"stop":            map[string]interface{}{"name": "Riverside"},
					"trip_short_name": number,
				},
				map[string]interface{}{
					"arrival":         day + "T11:40",
					"stop":            map[string]interface{}{"name": "Harbor Terminal"},
					"trip_short_name": number,
				},
			},
		},
		Source: "mock-transit",
	}, nil
}

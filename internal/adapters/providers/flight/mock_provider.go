package flight

import (
	"context"
	"strings"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
)

// MockFlightProvider serves canned flight data for local development
type MockFlightProvider struct{}

// NewMockFlightProvider creates a mock flight provider
func NewMockFlightProvider() providers.FlightProvider {
	return &MockFlightProvider{}
}

// LookupFlight returns a two-leg flight for any query starting with a letter
// pair, mimicking the shape of a real flight-status payload
func (p *MockFlightProvider) LookupFlight(ctx context.Context, query, date string) (*entities.SegmentAutofillSuggestion, error) {
	number := strings.ToUpper(strings.TrimSpace(query))
	if len(number) < 3 {
		return nil, nil
	}

	day := date
	if day == "" {
		day = "2025-01-15"
	}

	title := "Flight " + number
	airline := "Mock Air"
	origin := "San Francisco International"

	return &entities.SegmentAutofillSuggestion{
		Title:           &title,
		ProviderName:    &airline,
		LocationName:    &origin,
		TransportNumber: &number,
		Metadata: map[string]interface{}{
			"legs": []interface{}{
				map[string]interface{}{
					"number": number,
					"airline": map[string]interface{}{
						"name": airline,
					},
					"departure": map[string]interface{}{
						"airport": map[string]interface{}{
							"name": origin,
							"iata": "SFO",
						},
						"scheduledTime": map[string]interface{}{
							"local": day + "T08:30",
							"utc":   day + "T16:30Z",
						},
					},
					"arrival": map[string]interface{}{
						"airport": map[string]interface{}{
							"name": "Denver International",
							"iata": "DEN",
						},
						"scheduledTime": map[string]interface{}{
							"local": day + "T12:05",
							"utc":   day + "T19:05Z",
						},
					},
				},
				map[string]interface{}{
					"number": number,
					"airline": map[string]interface{}{
						"name": airline,
					},
					"departure": map[string]interface{}{
						"airport": map[string]interface{}{
							"name": "Denver International",
							"iata": "DEN",
						},
						"scheduledTime": map[string]interface{}{
							"local": day + "T13:20",
							"utc":   day + "T20:20Z",
						},
					},
					"arrival": map[string]interface{}{
						"airport": map[string]interface{}{
							"name": "Chicago O'Hare International",
							"iata": "ORD",
						},
						"scheduledTime": map[string]interface{}{
							"local": day + "T16:45",
							"utc":   day + "T22:45Z",
						},
					},
				},
			},
		},
		Source: "mock-flight",
	}, nil
}

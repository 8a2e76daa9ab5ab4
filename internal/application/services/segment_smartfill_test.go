package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

func strPtr(s string) *string { return &s }

func TestMergeSuggestion_NilFieldsKeepFormValues(t *testing.T) {
	form := &entities.SegmentFormState{
		Title:           "Dinner at Narisawa",
		LocationAddress: "2-6-15 Minami-Aoyama",
		ProviderName:    "OpenTable",
	}
	suggestion := &entities.SegmentAutofillSuggestion{
		Title:  strPtr("Narisawa"),
		Source: "google-places",
	}

	merged := services.MergeSuggestion(form, suggestion, entities.SegmentTypeMeal)

	assert.Equal(t, "Narisawa", merged.Title)
	assert.Equal(t, "2-6-15 Minami-Aoyama", merged.LocationAddress)
	assert.Equal(t, "OpenTable", merged.ProviderName)
}

func TestMergeSuggestion_DoesNotMutateCallerForm(t *testing.T) {
	form := &entities.SegmentFormState{
		Title:    "before",
		Metadata: map[string]interface{}{"note": "keep"},
	}
	suggestion := &entities.SegmentAutofillSuggestion{
		Title:    strPtr("after"),
		Metadata: map[string]interface{}{"rating": 4.5},
		Source:   "google-places",
	}

	merged := services.MergeSuggestion(form, suggestion, entities.SegmentTypeMeal)

	assert.Equal(t, "before", form.Title)
	assert.NotContains(t, form.Metadata, "rating")
	assert.NotContains(t, form.Metadata, "smartFillSource")

	assert.Equal(t, "after", merged.Title)
	assert.Equal(t, "keep", merged.Metadata["note"])
	assert.Equal(t, 4.5, merged.Metadata["rating"])
	assert.Equal(t, "google-places", merged.Metadata["smartFillSource"])
}

func TestMergeSuggestion_ConvertsTimesToLocalInputShape(t *testing.T) {
	form := &entities.SegmentFormState{}
	suggestion := &entities.SegmentAutofillSuggestion{
		StartTime: strPtr("2026-03-28T11:05:00Z"),
		EndTime:   strPtr("2026-03-28T22:05"),
		Source:    "aerodatabox",
	}

	merged := services.MergeSuggestion(form, suggestion, entities.SegmentTypeFlight)

	assert.Equal(t, "2026-03-28T11:05", merged.StartTime)
	assert.Equal(t, "2026-03-28T22:05", merged.EndTime)
}

func TestMergeSuggestion_LegsIgnoredForPlaceTypes(t *testing.T) {
	form := &entities.SegmentFormState{}
	suggestion := &entities.SegmentAutofillSuggestion{
		Metadata: map[string]interface{}{
			"legs": []interface{}{
				map[string]interface{}{"origin": "A", "destination": "B"},
			},
		},
		Source: "google-places",
	}

	merged := services.MergeSuggestion(form, suggestion, entities.SegmentTypeHotel)

	assert.Empty(t, merged.Legs)
}

func TestExtractLegs_ExplicitLegsWinOverStopTimes(t *testing.T) {
	metadata := map[string]interface{}{
		"legs": []interface{}{
			map[string]interface{}{
				"origin":        "Shinjuku",
				"destination":   "Hakone-Yumoto",
				"departureTime": "2026-03-30T09:00",
				"arrivalTime":   "2026-03-30T10:25",
				"carrier":       "Odakyu",
				"number":        "Romancecar 71",
			},
		},
		"stop_times": []interface{}{
			map[string]interface{}{"stop": map[string]interface{}{"name": "X"}},
			map[string]interface{}{"stop": map[string]interface{}{"name": "Y"}},
		},
	}

	legs := services.ExtractLegs(metadata)

	require.Len(t, legs, 1)
	assert.Equal(t, "Shinjuku", legs[0].Origin)
	assert.Equal(t, "Hakone-Yumoto", legs[0].Destination)
	assert.Equal(t, "Odakyu", legs[0].Carrier)
	assert.Equal(t, "Romancecar 71", legs[0].Number)
}

func TestExtractLegs_FlightShapedPayload(t *testing.T) {
	metadata := map[string]interface{}{
		"legs": []interface{}{
			map[string]interface{}{
				"number": "UA 120",
				"departure": map[string]interface{}{
					"airport": map[string]interface{}{"name": "San Francisco", "iata": "SFO"},
					"scheduledTime": map[string]interface{}{
						"utc":   "2025-03-01T16:30:00Z",
						"local": "2025-03-01T08:30",
					},
				},
				"arrival": map[string]interface{}{
					"airport": map[string]interface{}{"iata": "DEN"},
					"scheduledTime": map[string]interface{}{
						"local": "2025-03-01T12:05",
					},
				},
				"airline": map[string]interface{}{"name": "United"},
			},
			map[string]interface{}{
				"number": "UA 481",
				"departure": map[string]interface{}{
					"airport": map[string]interface{}{"name": "Denver"},
					"scheduledTime": map[string]interface{}{
						"utc": "2025-03-01T20:00:00Z",
					},
				},
				"arrival": map[string]interface{}{
					"airport": map[string]interface{}{"name": "Chicago O'Hare"},
				},
			},
		},
	}

	legs := services.ExtractLegs(metadata)

	require.Len(t, legs, 2)
	assert.Equal(t, "San Francisco", legs[0].Origin)
	// local time wins over utc when both are present
	assert.Equal(t, "2025-03-01T08:30", legs[0].DepartureTime)
	// airport name absent, iata fills in
	assert.Equal(t, "DEN", legs[0].Destination)
	assert.Equal(t, "United", legs[0].Carrier)
	assert.Equal(t, "UA 120", legs[0].Number)

	assert.Equal(t, "Denver", legs[1].Origin)
	// only utc present, reformatted to local input shape
	assert.Equal(t, "2025-03-01T20:00", legs[1].DepartureTime)
	assert.Equal(t, "Chicago O'Hare", legs[1].Destination)
}

func TestExtractLegs_StopTimesBecomeConsecutivePairs(t *testing.T) {
	metadata := map[string]interface{}{
		"stop_times": []interface{}{
			map[string]interface{}{
				"stop":            map[string]interface{}{"name": "Central Station"},
				"departure":       "2025-04-10T07:15",
				"trip_short_name": "IC 204",
			},
			map[string]interface{}{
				"stop":      map[string]interface{}{"name": "Riverside"},
				"arrival":   "2025-04-10T07:52",
				"departure": "2025-04-10T07:55",
			},
			map[string]interface{}{
				"stop":    map[string]interface{}{"name": "Harbor Terminal"},
				"arrival": "2025-04-10T08:30",
			},
		},
	}

	legs := services.ExtractLegs(metadata)

	require.Len(t, legs, 2)
	assert.Equal(t, "Central Station", legs[0].Origin)
	assert.Equal(t, "Riverside", legs[0].Destination)
	assert.Equal(t, "2025-04-10T07:15", legs[0].DepartureTime)
	assert.Equal(t, "2025-04-10T07:52", legs[0].ArrivalTime)
	assert.Equal(t, "IC 204", legs[0].Number)

	assert.Equal(t, "Riverside", legs[1].Origin)
	assert.Equal(t, "Harbor Terminal", legs[1].Destination)
	assert.Equal(t, "2025-04-10T07:55", legs[1].DepartureTime)
	assert.Equal(t, "2025-04-10T08:30", legs[1].ArrivalTime)
}

func TestExtractLegs_SingleStopProducesNoLegs(t *testing.T) {
	metadata := map[string]interface{}{
		"stop_times": []interface{}{
			map[string]interface{}{"stop": map[string]interface{}{"name": "Central Station"}},
		},
	}

	assert.Nil(t, services.ExtractLegs(metadata))
	assert.Nil(t, services.ExtractLegs(nil))
	assert.Nil(t, services.ExtractLegs(map[string]interface{}{"rating": 4.5}))
}

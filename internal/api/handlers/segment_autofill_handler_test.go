package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint-backend/internal/api/handlers"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

type fakeFlightProvider struct {
	calls      int
	suggestion *entities.SegmentAutofillSuggestion
	err        error
}

func (f *fakeFlightProvider) LookupFlight(ctx context.Context, query, date string) (*entities.SegmentAutofillSuggestion, error) {
	f.calls++
	return f.suggestion, f.err
}

func connectingFlightSuggestion() *entities.SegmentAutofillSuggestion {
	title := "Flight UA 120 SFO-ORD"
	return &entities.SegmentAutofillSuggestion{
		Title:  &title,
		Source: "aerodatabox",
		Metadata: map[string]interface{}{
			"legs": []interface{}{
				map[string]interface{}{
					"number": "UA 120",
					"departure": map[string]interface{}{
						"airport":       map[string]interface{}{"name": "San Francisco", "iata": "SFO"},
						"scheduledTime": map[string]interface{}{"local": "2025-03-01T08:30"},
					},
					"arrival": map[string]interface{}{
						"airport":       map[string]interface{}{"name": "Denver", "iata": "DEN"},
						"scheduledTime": map[string]interface{}{"local": "2025-03-01T12:05"},
					},
				},
				map[string]interface{}{
					"number": "UA 481",
					"departure": map[string]interface{}{
						"airport":       map[string]interface{}{"name": "Denver", "iata": "DEN"},
						"scheduledTime": map[string]interface{}{"local": "2025-03-01T13:40"},
					},
					"arrival": map[string]interface{}{
						"airport":       map[string]interface{}{"name": "Chicago O'Hare", "iata": "ORD"},
						"scheduledTime": map[string]interface{}{"local": "2025-03-01T17:10"},
					},
				},
			},
		},
	}
}

func newAutofillHandler(flights *fakeFlightProvider) *handlers.SegmentAutofillHandler {
	svc := services.NewSegmentAutofillService(flights, nil, nil, 15*time.Minute, nil)
	return handlers.NewSegmentAutofillHandler(svc)
}

func postJSON(t *testing.T, handler http.HandlerFunc, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/segments/autofill", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAutofill_ReturnsSuggestionWithCacheMeta(t *testing.T) {
	flights := &fakeFlightProvider{suggestion: connectingFlightSuggestion()}
	handler := newAutofillHandler(flights)

	payload := map[string]interface{}{
		"type":  "flight",
		"query": "UA120",
		"date":  "2025-03-01",
	}

	rec := postJSON(t, handler.Autofill, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var first struct {
		Data entities.SegmentAutofillSuggestion `json:"data"`
		Meta map[string]string                  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "miss", first.Meta["cache"])
	require.NotNil(t, first.Data.Title)
	assert.Equal(t, "Flight UA 120 SFO-ORD", *first.Data.Title)

	legs, ok := first.Data.Metadata["legs"].([]interface{})
	require.True(t, ok)
	assert.Len(t, legs, 2)

	// An identical request is served from cache without another provider call
	rec = postJSON(t, handler.Autofill, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var second struct {
		Data entities.SegmentAutofillSuggestion `json:"data"`
		Meta map[string]string                  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, "hit", second.Meta["cache"])
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, flights.calls)
}

func TestAutofill_UnknownTypeReturns400(t *testing.T) {
	handler := newAutofillHandler(&fakeFlightProvider{})

	rec := postJSON(t, handler.Autofill, map[string]interface{}{
		"type":  "spaceship",
		"query": "UA120",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAutofill_NoSuggestionReturns404(t *testing.T) {
	handler := newAutofillHandler(&fakeFlightProvider{suggestion: nil})

	rec := postJSON(t, handler.Autofill, map[string]interface{}{
		"type":  "flight",
		"query": "UA9999",
	})

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no suggestion found", body["error"])
}

func TestAutofill_ProviderUnavailableReturns503(t *testing.T) {
	handler := newAutofillHandler(&fakeFlightProvider{
		err: apperrors.NewProviderUnavailableError("flight data provider unavailable", nil),
	})

	rec := postJSON(t, handler.Autofill, map[string]interface{}{
		"type":  "flight",
		"query": "UA120",
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAutofill_InvalidPayloadReturns400(t *testing.T) {
	handler := newAutofillHandler(&fakeFlightProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/segments/autofill", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.Autofill(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApply_MergesSuggestionIntoForm(t *testing.T) {
	handler := newAutofillHandler(&fakeFlightProvider{})

	title := "Flight UA 120 SFO-ORD"
	payload := map[string]interface{}{
		"type": "flight",
		"form": entities.SegmentFormState{
			Title:            "My flight",
			ConfirmationCode: "ABC123",
		},
		"suggestion": entities.SegmentAutofillSuggestion{
			Title:    &title,
			Source:   "aerodatabox",
			Metadata: connectingFlightSuggestion().Metadata,
		},
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/segments/smart-fill/apply", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Apply(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data entities.SegmentFormState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	assert.Equal(t, "Flight UA 120 SFO-ORD", response.Data.Title)
	assert.Equal(t, "ABC123", response.Data.ConfirmationCode)
	assert.Equal(t, "aerodatabox", response.Data.Metadata["smartFillSource"])

	require.Len(t, response.Data.Legs, 2)
	assert.Equal(t, "San Francisco", response.Data.Legs[0].Origin)
	assert.Equal(t, "Denver", response.Data.Legs[0].Destination)
	assert.Equal(t, "2025-03-01T08:30", response.Data.Legs[0].DepartureTime)
	assert.Equal(t, "Denver", response.Data.Legs[1].Origin)
	assert.Equal(t, "Chicago O'Hare", response.Data.Legs[1].Destination)
}

func TestApply_MissingFormReturns400(t *testing.T) {
	handler := newAutofillHandler(&fakeFlightProvider{})

	body := []byte(`{"type":"flight"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/segments/smart-fill/apply", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Apply(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

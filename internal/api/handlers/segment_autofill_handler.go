package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// SegmentAutofillHandler handles autofill and smart-fill requests
type SegmentAutofillHandler struct {
	service *services.SegmentAutofillService
}

// NewSegmentAutofillHandler creates a new autofill handler
func NewSegmentAutofillHandler(service *services.SegmentAutofillService) *SegmentAutofillHandler {
	return &SegmentAutofillHandler{service: service}
}

// Autofill handles POST /api/segments/autofill
func (h *SegmentAutofillHandler) Autofill(w http.ResponseWriter, r *http.Request) {
	var input services.AutofillInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.service.Resolve(r.Context(), &input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if result.Suggestion == nil {
		respondWithError(w, http.StatusNotFound, "no suggestion found")
		return
	}

	cacheState := "miss"
	if result.CacheHit {
		cacheState = "hit"
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data": result.Suggestion,
		"meta": map[string]string{"cache": cacheState},
	})
}

type smartFillApplyRequest struct {
	Type       string                              `json:"type"`
	Form       *entities.SegmentFormState          `json:"form"`
	Suggestion *entities.SegmentAutofillSuggestion `json:"suggestion"`
}

// Apply handles POST /api/segments/smart-fill/apply: merges a suggestion
// into an editable form state and returns the new state
func (h *SegmentAutofillHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var input smartFillApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if input.Form == nil {
		respondWithError(w, http.StatusBadRequest, "form is required")
		return
	}

	merged := services.MergeSuggestion(input.Form, input.Suggestion, entities.SegmentType(input.Type))
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data": merged,
	})
}

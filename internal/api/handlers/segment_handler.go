package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/waypointhq/waypoint-backend/internal/api/middleware"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// SegmentHandler handles itinerary segment requests
type SegmentHandler struct {
	service *services.SegmentService
}

// NewSegmentHandler creates a new segment handler
func NewSegmentHandler(service *services.SegmentService) *SegmentHandler {
	return &SegmentHandler{service: service}
}

// Create handles POST /api/itineraries/{id}/segments
func (h *SegmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	itineraryID := r.PathValue("id")
	if itineraryID == "" {
		respondWithError(w, http.StatusBadRequest, "itinerary ID is required")
		return
	}

	var segment entities.Segment
	if err := json.NewDecoder(r.Body).Decode(&segment); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	segment.ItineraryID = itineraryID

	created, err := h.service.Create(r.Context(), userID, &segment)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/segments/{id}
func (h *SegmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "segment ID is required")
		return
	}

	segment, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, segment)
}

// Update handles PUT /api/segments/{id}
func (h *SegmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "segment ID is required")
		return
	}

	var segment entities.Segment
	if err := json.NewDecoder(r.Body).Decode(&segment); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	segment.ID = id

	updated, err := h.service.Update(r.Context(), userID, &segment)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/segments/{id}
func (h *SegmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "segment ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/itineraries/{id}/segments
func (h *SegmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	itineraryID := r.PathValue("id")
	if itineraryID == "" {
		respondWithError(w, http.StatusBadRequest, "itinerary ID is required")
		return
	}

	segments, err := h.service.List(r.Context(), userID, itineraryID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"segments": segments,
		"count":    len(segments),
	})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/waypointhq/waypoint-backend/internal/api/middleware"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
)

// ItineraryHandler handles itinerary requests
type ItineraryHandler struct {
	service *services.ItineraryService
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(service *services.ItineraryService) *ItineraryHandler {
	return &ItineraryHandler{service: service}
}

// Create handles POST /api/itineraries
func (h *ItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var itinerary entities.Itinerary
	if err := json.NewDecoder(r.Body).Decode(&itinerary); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	created, err := h.service.Create(r.Context(), userID, &itinerary)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/itineraries/{id}
func (h *ItineraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "itinerary ID is required")
		return
	}

	itinerary, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, itinerary)
}

// Update handles PUT /api/itineraries/{id}
func (h *ItineraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "itinerary ID is required")
		return
	}

	var itinerary entities.Itinerary
	if err := json.NewDecoder(r.Body).Decode(&itinerary); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	itinerary.ID = id

	updated, err := h.service.Update(r.Context(), userID, &itinerary)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/itineraries/{id}
func (h *ItineraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "itinerary ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/itineraries
func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	filter := repositories.ItineraryFilter{
		IncludeArchived: r.URL.Query().Get("include_archived") == "true",
		Limit:           parseIntParam(r, "limit", 50),
		Offset:          parseIntParam(r, "offset", 0),
	}

	itineraries, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"itineraries": itineraries,
		"count":       len(itineraries),
	})
}

// Search handles GET /api/itineraries/search
func (h *ItineraryHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	results, err := h.service.Search(r.Context(), userID, r.URL.Query().Get("q"), parseIntParam(r, "limit", 20))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"itineraries": results,
		"count":       len(results),
	})
}

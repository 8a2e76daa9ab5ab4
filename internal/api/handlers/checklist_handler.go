package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/waypointhq/waypoint-backend/internal/api/middleware"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// ChecklistHandler handles segment checklist requests
type ChecklistHandler struct {
	service *services.ChecklistService
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(service *services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{service: service}
}

// Create handles POST /api/segments/{id}/checklist
func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	segmentID := r.PathValue("id")
	if segmentID == "" {
		respondWithError(w, http.StatusBadRequest, "segment ID is required")
		return
	}

	var item entities.ChecklistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	item.SegmentID = segmentID

	created, err := h.service.Create(r.Context(), userID, &item)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/checklist/{id}
func (h *ChecklistHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "checklist item ID is required")
		return
	}

	var item entities.ChecklistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	item.ID = id

	updated, err := h.service.Update(r.Context(), userID, &item)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/checklist/{id}
func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "checklist item ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/segments/{id}/checklist
func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	segmentID := r.PathValue("id")
	if segmentID == "" {
		respondWithError(w, http.StatusBadRequest, "segment ID is required")
		return
	}

	items, err := h.service.List(r.Context(), userID, segmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

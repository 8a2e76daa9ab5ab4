package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/waypointhq/waypoint-backend/internal/api/middleware"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
)

// BlockHandler handles block and unblock requests
type BlockHandler struct {
	service *services.BlockService
}

// NewBlockHandler creates a new block handler
func NewBlockHandler(service *services.BlockService) *BlockHandler {
	return &BlockHandler{service: service}
}

// Block handles POST /api/blocks
func (h *BlockHandler) Block(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body struct {
		BlockedID string `json:"blocked_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.Block(r.Context(), userID, body.BlockedID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "blocked"})
}

// Unblock handles DELETE /api/blocks/{id}
func (h *BlockHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	blockedID := r.PathValue("id")
	if blockedID == "" {
		respondWithError(w, http.StatusBadRequest, "blocked user ID is required")
		return
	}

	if err := h.service.Unblock(r.Context(), userID, blockedID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

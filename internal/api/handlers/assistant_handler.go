package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/waypointhq/waypoint-backend/internal/api/middleware"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// AssistantHandler handles trip assistant conversations
type AssistantHandler struct {
	service *services.AssistantService
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(service *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{service: service}
}

// Ask handles POST /api/assistant/chat
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body struct {
		ItineraryID string                 `json:"itinerary_id"`
		Messages    []entities.ChatMessage `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	reply, err := h.service.Ask(r.Context(), userID, body.ItineraryID, body.Messages)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"reply": reply,
	})
}

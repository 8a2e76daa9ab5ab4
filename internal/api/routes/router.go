package routes

import (
	"net/http"

	"github.com/waypointhq/waypoint-backend/internal/api/handlers"
	"github.com/waypointhq/waypoint-backend/internal/api/middleware"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	userHandler       *handlers.UserHandler
	connectionHandler *handlers.ConnectionHandler
	blockHandler      *handlers.BlockHandler
	matchHandler      *handlers.MatchHandler
	itineraryHandler  *handlers.ItineraryHandler
	segmentHandler    *handlers.SegmentHandler
	checklistHandler  *handlers.ChecklistHandler
	autofillHandler   *handlers.SegmentAutofillHandler
	assistantHandler  *handlers.AssistantHandler

	authMiddleware  *middleware.AuthMiddleware
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	userHandler *handlers.UserHandler,
	connectionHandler *handlers.ConnectionHandler,
	blockHandler *handlers.BlockHandler,
	matchHandler *handlers.MatchHandler,
	itineraryHandler *handlers.ItineraryHandler,
	segmentHandler *handlers.SegmentHandler,
	checklistHandler *handlers.ChecklistHandler,
	autofillHandler *handlers.SegmentAutofillHandler,
	assistantHandler *handlers.AssistantHandler,
	authMiddleware *middleware.AuthMiddleware,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		userHandler:       userHandler,
		connectionHandler: connectionHandler,
		blockHandler:      blockHandler,
		matchHandler:      matchHandler,
		itineraryHandler:  itineraryHandler,
		segmentHandler:    segmentHandler,
		checklistHandler:  checklistHandler,
		autofillHandler:   autofillHandler,
		assistantHandler:  assistantHandler,
		authMiddleware:    authMiddleware,
		cacheMiddleware:   cacheMiddleware,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// User endpoints
	r.mux.HandleFunc("GET /api/users/me", r.userHandler.Me)
	r.mux.HandleFunc("PUT /api/users/me", r.userHandler.UpdateMe)
	r.mux.HandleFunc("GET /api/users/{id}", r.userHandler.Get)

	// Connection endpoints
	r.mux.HandleFunc("GET /api/connections", r.connectionHandler.List)
	r.mux.HandleFunc("POST /api/connections", r.connectionHandler.Request)
	r.mux.HandleFunc("POST /api/connections/{id}/accept", r.connectionHandler.Accept)
	r.mux.HandleFunc("DELETE /api/connections/{id}", r.connectionHandler.Remove)

	// Block endpoints
	r.mux.HandleFunc("POST /api/blocks", r.blockHandler.Block)
	r.mux.HandleFunc("DELETE /api/blocks/{id}", r.blockHandler.Unblock)

	// Match endpoints
	r.mux.HandleFunc("GET /api/matches", r.matchHandler.List)
	r.mux.HandleFunc("POST /api/matches/{id}/respond", r.matchHandler.Respond)

	// Itinerary endpoints
	r.mux.HandleFunc("GET /api/itineraries", r.itineraryHandler.List)
	r.mux.HandleFunc("POST /api/itineraries", r.itineraryHandler.Create)
	r.mux.HandleFunc("GET /api/itineraries/search", r.itineraryHandler.Search)
	r.mux.HandleFunc("GET /api/itineraries/{id}", r.itineraryHandler.Get)
	r.mux.HandleFunc("PUT /api/itineraries/{id}", r.itineraryHandler.Update)
	r.mux.HandleFunc("DELETE /api/itineraries/{id}", r.itineraryHandler.Delete)

	// Segment endpoints
	r.mux.HandleFunc("GET /api/itineraries/{id}/segments", r.segmentHandler.List)
	r.mux.HandleFunc("POST /api/itineraries/{id}/segments", r.segmentHandler.Create)
	r.mux.HandleFunc("GET /api/segments/{id}", r.segmentHandler.Get)
	r.mux.HandleFunc("PUT /api/segments/{id}", r.segmentHandler.Update)
	r.mux.HandleFunc("DELETE /api/segments/{id}", r.segmentHandler.Delete)

	// Checklist endpoints
	r.mux.HandleFunc("GET /api/segments/{id}/checklist", r.checklistHandler.List)
	r.mux.HandleFunc("POST /api/segments/{id}/checklist", r.checklistHandler.Create)
	r.mux.HandleFunc("PUT /api/checklist/{id}", r.checklistHandler.Update)
	r.mux.HandleFunc("DELETE /api/checklist/{id}", r.checklistHandler.Delete)

	// Autofill and smart-fill endpoints
	r.mux.HandleFunc("POST /api/segments/autofill", r.autofillHandler.Autofill)
	r.mux.HandleFunc("POST /api/segments/smart-fill/apply", r.autofillHandler.Apply)

	// Assistant endpoint
	r.mux.HandleFunc("POST /api/assistant/chat", r.assistantHandler.Ask)

	// Apply middleware in reverse order (last middleware wraps first).
	// The response cache sits inside auth so keys can be user-scoped;
	// CORS is outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	if r.authMiddleware != nil {
		handler = r.authMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// ItineraryService handles itinerary lifecycle and search indexing
type ItineraryService struct {
	repo        repositories.ItineraryRepository
	segmentRepo repositories.SegmentRepository
	searchRepo  repositories.ItinerarySearchRepository
}

// NewItineraryService creates a new itinerary service. searchRepo may be
// nil when no search backend is configured; search then degrades to a
// not-available error and indexing is skipped.
func NewItineraryService(
	repo repositories.ItineraryRepository,
	segmentRepo repositories.SegmentRepository,
	searchRepo repositories.ItinerarySearchRepository,
) *ItineraryService {
	return &ItineraryService{
		repo:        repo,
		segmentRepo: segmentRepo,
		searchRepo:  searchRepo,
	}
}

// Create creates an itinerary for the user
func (s *ItineraryService) Create(ctx context.Context, ownerID string, itinerary *entities.Itinerary) (*entities.Itinerary, error) {
	if strings.TrimSpace(itinerary.Title) == "" {
		return nil, apperrors.NewValidationError("title is required")
	}

	now := time.Now()
	itinerary.ID = uuid.New().String()
	itinerary.OwnerID = ownerID
	itinerary.IsArchived = false
	itinerary.CreatedAt = now
	itinerary.UpdatedAt = now

	if err := s.repo.Create(ctx, itinerary); err != nil {
		return nil, err
	}

	s.reindex(ctx, itinerary)
	return itinerary, nil
}

// Get returns an itinerary owned by the user
func (s *ItineraryService) Get(ctx context.Context, ownerID, id string) (*entities.Itinerary, error) {
	itinerary, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if itinerary.OwnerID != ownerID {
		return nil, apperrors.NewNotFoundError("itinerary not found")
	}
	return itinerary, nil
}

// Update applies edits to an itinerary owned by the user
func (s *ItineraryService) Update(ctx context.Context, ownerID string, itinerary *entities.Itinerary) (*entities.Itinerary, error) {
	existing, err := s.Get(ctx, ownerID, itinerary.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(itinerary.Title) == "" {
		return nil, apperrors.NewValidationError("title is required")
	}

	itinerary.OwnerID = existing.OwnerID
	itinerary.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, itinerary); err != nil {
		return nil, err
	}

	s.reindex(ctx, itinerary)
	return itinerary, nil
}

// Delete removes an itinerary owned by the user
func (s *ItineraryService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("itinerary_id", id).Msg("failed to remove itinerary from search index")
		}
	}
	return nil
}

// List returns the user's itineraries
func (s *ItineraryService) List(ctx context.Context, ownerID string, filter repositories.ItineraryFilter) ([]*entities.Itinerary, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.repo.ListByOwner(ctx, ownerID, filter)
}

// Search runs a full-text search over the user's itineraries
func (s *ItineraryService) Search(ctx context.Context, ownerID, query string, limit int) ([]*entities.Itinerary, error) {
	if s.searchRepo == nil {
		return nil, apperrors.NewExternalError("search is not available", nil)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.searchRepo.Search(ctx, ownerID, query, limit)
}

// Reindex refreshes the search document for an itinerary, including its
// current segments. Used after segment writes.
func (s *ItineraryService) Reindex(ctx context.Context, itineraryID string) {
	if s.searchRepo == nil {
		return
	}
	itinerary, err := s.repo.GetByID(ctx, itineraryID)
	if err != nil {
		log.Warn().Err(err).Str("itinerary_id", itineraryID).Msg("failed to load itinerary for reindex")
		return
	}
	s.reindex(ctx, itinerary)
}

func (s *ItineraryService) reindex(ctx context.Context, itinerary *entities.Itinerary) {
	if s.searchRepo == nil {
		return
	}
	segments, err := s.segmentRepo.ListByItinerary(ctx, itinerary.ID)
	if err != nil {
		log.Warn().Err(err).Str("itinerary_id", itinerary.ID).Msg("failed to load segments for reindex")
		segments = nil
	}
	if err := s.searchRepo.Index(ctx, itinerary, segments); err != nil {
		log.Warn().Err(err).Str("itinerary_id", itinerary.ID).Msg("failed to index itinerary")
	}
}

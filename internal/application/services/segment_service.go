package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/waypointhq/waypoint-backend/internal/adapters/events"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// SegmentService handles itinerary segment lifecycle. Writes publish change
// events for cache invalidation and trigger a search reindex of the owning
// itinerary.
type SegmentService struct {
	repo             repositories.SegmentRepository
	itineraryRepo    repositories.ItineraryRepository
	itineraryService *ItineraryService
	eventBus         providers.EventBus
}

// NewSegmentService creates a new segment service. eventBus may be nil.
func NewSegmentService(
	repo repositories.SegmentRepository,
	itineraryRepo repositories.ItineraryRepository,
	itineraryService *ItineraryService,
	eventBus providers.EventBus,
) *SegmentService {
	return &SegmentService{
		repo:             repo,
		itineraryRepo:    itineraryRepo,
		itineraryService: itineraryService,
		eventBus:         eventBus,
	}
}

// validSegmentTypes uses the same synonym table as autofill normalization
func canonicalSegmentType(raw string) (entities.SegmentType, bool) {
	segType, ok := segmentTypeSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return segType, ok
}

// Create creates a segment under an itinerary owned by the user
func (s *SegmentService) Create(ctx context.Context, ownerID string, segment *entities.Segment) (*entities.Segment, error) {
	itinerary, err := s.ownedItinerary(ctx, ownerID, segment.ItineraryID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(segment.Title) == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	segType, ok := canonicalSegmentType(string(segment.Type))
	if !ok {
		return nil, apperrors.NewValidationError("unknown segment type")
	}
	segment.Type = segType

	now := time.Now()
	segment.ID = uuid.New().String()
	segment.CreatedAt = now
	segment.UpdatedAt = now

	if err := s.repo.Create(ctx, segment); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, entities.SegmentEventCreated, segment, itinerary)
	return segment, nil
}

// Get returns a segment if its itinerary is owned by the user
func (s *SegmentService) Get(ctx context.Context, ownerID, id string) (*entities.Segment, error) {
	segment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedItinerary(ctx, ownerID, segment.ItineraryID); err != nil {
		return nil, err
	}
	return segment, nil
}

// Update applies edits to a segment
func (s *SegmentService) Update(ctx context.Context, ownerID string, segment *entities.Segment) (*entities.Segment, error) {
	existing, err := s.Get(ctx, ownerID, segment.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(segment.Title) == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	segType, ok := canonicalSegmentType(string(segment.Type))
	if !ok {
		return nil, apperrors.NewValidationError("unknown segment type")
	}
	segment.Type = segType
	segment.ItineraryID = existing.ItineraryID
	segment.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, segment); err != nil {
		return nil, err
	}

	itinerary, err := s.itineraryRepo.GetByID(ctx, segment.ItineraryID)
	if err == nil {
		s.afterWrite(ctx, entities.SegmentEventUpdated, segment, itinerary)
	}
	return segment, nil
}

// Delete removes a segment
func (s *SegmentService) Delete(ctx context.Context, ownerID, id string) error {
	segment, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	itinerary, err := s.itineraryRepo.GetByID(ctx, segment.ItineraryID)
	if err == nil {
		s.afterWrite(ctx, entities.SegmentEventDeleted, segment, itinerary)
	}
	return nil
}

// List returns the segments of an itinerary owned by the user, in position
// order
func (s *SegmentService) List(ctx context.Context, ownerID, itineraryID string) ([]*entities.Segment, error) {
	if _, err := s.ownedItinerary(ctx, ownerID, itineraryID); err != nil {
		return nil, err
	}
	return s.repo.ListByItinerary(ctx, itineraryID)
}

func (s *SegmentService) ownedItinerary(ctx context.Context, ownerID, itineraryID string) (*entities.Itinerary, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if itinerary.OwnerID != ownerID {
		return nil, apperrors.NewNotFoundError("itinerary not found")
	}
	return itinerary, nil
}

func (s *SegmentService) afterWrite(ctx context.Context, eventType entities.SegmentEventType, segment *entities.Segment, itinerary *entities.Itinerary) {
	if s.itineraryService != nil {
		s.itineraryService.Reindex(ctx, itinerary.ID)
	}

	if s.eventBus == nil {
		return
	}
	event := &entities.SegmentEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		SegmentID:   segment.ID,
		ItineraryID: itinerary.ID,
		OwnerID:     itinerary.OwnerID,
		OccurredAt:  time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.SegmentEventsChannel, event); err != nil {
		log.Warn().Err(err).Str("segment_id", segment.ID).Msg("failed to publish segment event")
	}
}

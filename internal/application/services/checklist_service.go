package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// ChecklistService handles per-segment checklist items
type ChecklistService struct {
	repo           repositories.ChecklistRepository
	segmentService *SegmentService
}

// NewChecklistService creates a new checklist service
func NewChecklistService(repo repositories.ChecklistRepository, segmentService *SegmentService) *ChecklistService {
	return &ChecklistService{
		repo:           repo,
		segmentService: segmentService,
	}
}

// Create adds a checklist item to a segment owned by the user
func (s *ChecklistService) Create(ctx context.Context, ownerID string, item *entities.ChecklistItem) (*entities.ChecklistItem, error) {
	if _, err := s.segmentService.Get(ctx, ownerID, item.SegmentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Label) == "" {
		return nil, apperrors.NewValidationError("label is required")
	}

	now := time.Now()
	item.ID = uuid.New().String()
	item.IsDone = false
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update edits a checklist item
func (s *ChecklistService) Update(ctx context.Context, ownerID string, item *entities.ChecklistItem) (*entities.ChecklistItem, error) {
	existing, err := s.repo.GetByID(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.segmentService.Get(ctx, ownerID, existing.SegmentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Label) == "" {
		return nil, apperrors.NewValidationError("label is required")
	}

	item.SegmentID = existing.SegmentID
	item.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a checklist item
func (s *ChecklistService) Delete(ctx context.Context, ownerID, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.segmentService.Get(ctx, ownerID, existing.SegmentID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// List returns a segment's checklist items in position order
func (s *ChecklistService) List(ctx context.Context, ownerID, segmentID string) ([]*entities.ChecklistItem, error) {
	if _, err := s.segmentService.Get(ctx, ownerID, segmentID); err != nil {
		return nil, err
	}
	return s.repo.ListBySegment(ctx, segmentID)
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// BlockService handles blocking between users
type BlockService struct {
	blockRepo      repositories.BlockRepository
	connectionRepo repositories.ConnectionRepository
	userRepo       repositories.UserRepository
}

// NewBlockService creates a new block service
func NewBlockService(
	blockRepo repositories.BlockRepository,
	connectionRepo repositories.ConnectionRepository,
	userRepo repositories.UserRepository,
) *BlockService {
	return &BlockService{
		blockRepo:      blockRepo,
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
	}
}

// Block records a block and severs any existing connection between the two
// users. The two writes are separate statements; if the connection delete
// fails after the block is recorded, the block stands and the error is
// surfaced so the caller can retry.
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockedID == "" {
		return apperrors.NewValidationError("blocked_id is required")
	}
	if blockerID == blockedID {
		return apperrors.NewValidationError("cannot block yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, blockedID); err != nil {
		return err
	}

	block := &entities.Block{
		ID:        uuid.New().String(),
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now(),
	}

	if err := s.blockRepo.Upsert(ctx, block); err != nil {
		return err
	}

	if err := s.connectionRepo.DeleteBetween(ctx, blockerID, blockedID); err != nil {
		log.Warn().Err(err).
			Str("blocker_id", blockerID).
			Str("blocked_id", blockedID).
			Msg("block recorded but connection cleanup failed")
		return err
	}

	return nil
}

// Unblock removes a block
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	return s.blockRepo.Delete(ctx, blockerID, blockedID)
}

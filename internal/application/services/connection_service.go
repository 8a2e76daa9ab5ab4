package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// ConnectionService handles the user connection graph
type ConnectionService struct {
	repo      repositories.ConnectionRepository
	blockRepo repositories.BlockRepository
	userRepo  repositories.UserRepository
}

// NewConnectionService creates a new connection service
func NewConnectionService(
	repo repositories.ConnectionRepository,
	blockRepo repositories.BlockRepository,
	userRepo repositories.UserRepository,
) *ConnectionService {
	return &ConnectionService{
		repo:      repo,
		blockRepo: blockRepo,
		userRepo:  userRepo,
	}
}

// Request creates a pending connection request. Requests to or from a
// blocked user are rejected as if the user did not exist.
func (s *ConnectionService) Request(ctx context.Context, requesterID, addresseeID string) (*entities.Connection, error) {
	if addresseeID == "" {
		return nil, apperrors.NewValidationError("addressee_id is required")
	}
	if requesterID == addresseeID {
		return nil, apperrors.NewValidationError("cannot connect to yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, addresseeID); err != nil {
		return nil, err
	}

	for _, pair := range [][2]string{{requesterID, addresseeID}, {addresseeID, requesterID}} {
		blocked, err := s.blockRepo.Exists(ctx, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, apperrors.NewNotFoundError("user not found")
		}
	}

	now := time.Now()
	connection := &entities.Connection{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      entities.ConnectionStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, connection); err != nil {
		return nil, err
	}

	return connection, nil
}

// Accept marks a pending request as accepted. Only the addressee may accept.
func (s *ConnectionService) Accept(ctx context.Context, userID, connectionID string) (*entities.Connection, error) {
	connection, err := s.repo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if connection.AddresseeID != userID {
		return nil, apperrors.NewNotFoundError("connection not found")
	}
	if connection.Status != entities.ConnectionStatusPending {
		return nil, apperrors.NewConflictError("connection is not pending")
	}

	if err := s.repo.Accept(ctx, connectionID); err != nil {
		return nil, err
	}

	connection.Status = entities.ConnectionStatusAccepted
	connection.UpdatedAt = time.Now()
	return connection, nil
}

// Remove deletes a connection or declines a pending request. Either side
// may remove.
func (s *ConnectionService) Remove(ctx context.Context, userID, connectionID string) error {
	connection, err := s.repo.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}

	if connection.RequesterID != userID && connection.AddresseeID != userID {
		return apperrors.NewNotFoundError("connection not found")
	}

	return s.repo.Delete(ctx, connectionID)
}

// List returns the user's connections, optionally filtered by status
func (s *ConnectionService) List(ctx context.Context, userID string, filter repositories.ConnectionFilter) ([]*entities.Connection, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.repo.ListForUser(ctx, userID, filter)
}

package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// BlockAdapter implements the BlockRepository interface
type BlockAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBlockAdapter creates a new block adapter
func NewBlockAdapter(client *postgres.Client) repositories.BlockRepository {
	return &BlockAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Upsert records a block; blocking an already-blocked user is a no-op
func (a *BlockAdapter) Upsert(ctx context.Context, block *entities.Block) error {
	record := goqu.Record{
		"id":         block.ID,
		"blocker_id": block.BlockerID,
		"blocked_id": block.BlockedID,
		"created_at": block.CreatedAt,
	}

	query, args, err := a.db.Insert("blocks").
		Rows(record).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return classifyWriteError("failed to create block", err)
	}

	return nil
}

// Delete removes a block
func (a *BlockAdapter) Delete(ctx context.Context, blockerID, blockedID string) error {
	query, args, err := a.db.Delete("blocks").
		Where(goqu.Ex{"blocker_id": blockerID, "blocked_id": blockedID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete block", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("block of %s by %s not found", blockedID, blockerID))
	}

	return nil
}

// Exists checks whether blocker has blocked blocked
func (a *BlockAdapter) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("blocks").
		Where(goqu.Ex{"blocker_id": blockerID, "blocked_id": blockedID}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build exists query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check block", err)
	}

	return count > 0, nil
}

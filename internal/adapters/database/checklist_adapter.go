package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// ChecklistAdapter implements the ChecklistRepository interface
type ChecklistAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewChecklistAdapter creates a new checklist adapter
func NewChecklistAdapter(client *postgres.Client) repositories.ChecklistRepository {
	return &ChecklistAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var checklistColumns = []interface{}{
	"id", "segment_id", "label", "is_done", "position", "created_at", "updated_at",
}

// Create creates a new checklist item
func (a *ChecklistAdapter) Create(ctx context.Context, item *entities.ChecklistItem) error {
	record := goqu.Record{
		"id":         item.ID,
		"segment_id": item.SegmentID,
		"label":      item.Label,
		"is_done":    item.IsDone,
		"position":   item.Position,
		"created_at": item.CreatedAt,
		"updated_at": item.UpdatedAt,
	}

	query, args, err := a.db.Insert("checklist_items").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return classifyWriteError("failed to create checklist item", err)
	}

	return nil
}

// GetByID retrieves a checklist item by ID
func (a *ChecklistAdapter) GetByID(ctx context.Context, id string) (*entities.ChecklistItem, error) {
	query, args, err := a.db.Select(checklistColumns...).
		From("checklist_items").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	item := &entities.ChecklistItem{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&item.ID,
		&item.SegmentID,
		&item.Label,
		&item.IsDone,
		&item.Position,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("checklist item with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get checklist item", err)
	}

	return item, nil
}

// Update updates a checklist item
func (a *ChecklistAdapter) Update(ctx context.Context, item *entities.ChecklistItem) error {
	item.UpdatedAt = time.Now()

	record := goqu.Record{
		"label":      item.Label,
		"is_done":    item.IsDone,
		"position":   item.Position,
		"updated_at": item.UpdatedAt,
	}

	query, args, err := a.db.Update("checklist_items").
		Set(record).
		Where(goqu.Ex{"id": item.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteError("failed to update checklist item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("checklist item with id %s not found", item.ID))
	}

	return nil
}

// Delete deletes a checklist item
func (a *ChecklistAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("checklist_items").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete checklist item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("checklist item with id %s not found", id))
	}

	return nil
}

// ListBySegment retrieves checklist items for a segment, ordered by position
func (a *ChecklistAdapter) ListBySegment(ctx context.Context, segmentID string) ([]*entities.ChecklistItem, error) {
	query, args, err := a.db.Select(checklistColumns...).
		From("checklist_items").
		Where(goqu.Ex{"segment_id": segmentID}).
		Order(goqu.I("position").Asc(), goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list checklist items", err)
	}
	defer rows.Close()

	var items []*entities.ChecklistItem
	for rows.Next() {
		item := &entities.ChecklistItem{}
		err := rows.Scan(
			&item.ID,
			&item.SegmentID,
			&item.Label,
			&item.IsDone,
			&item.Position,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan checklist item", err)
		}
		items = append(items, item)
	}

	return items, nil
}

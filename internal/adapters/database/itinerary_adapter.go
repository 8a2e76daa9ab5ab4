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

// ItineraryAdapter implements the ItineraryRepository interface
type ItineraryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewItineraryAdapter creates a new itinerary adapter
func NewItineraryAdapter(client *postgres.Client) repositories.ItineraryRepository {
	return &ItineraryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var itineraryColumns = []interface{}{
	"id", "owner_id", "title", "description", "destination",
	"start_date", "end_date", "is_archived", "created_at", "updated_at",
}

// Create creates a new itinerary
func (a *ItineraryAdapter) Create(ctx context.Context, itinerary *entities.Itinerary) error {
	record := goqu.Record{
		"id":          itinerary.ID,
		"owner_id":    itinerary.OwnerID,
		"title":       itinerary.Title,
		"description": itinerary.Description,
		"destination": itinerary.Destination,
		"start_date":  itinerary.StartDate,
		"end_date":    itinerary.EndDate,
		"is_archived": itinerary.IsArchived,
		"created_at":  itinerary.CreatedAt,
		"updated_at":  itinerary.UpdatedAt,
	}

	query, args, err := a.db.Insert("itineraries").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return classifyWriteError("failed to create itinerary", err)
	}

	return nil
}

// GetByID retrieves an itinerary by ID
func (a *ItineraryAdapter) GetByID(ctx context.Context, id string) (*entities.Itinerary, error) {
	query, args, err := a.db.Select(itineraryColumns...).
		From("itineraries").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	itinerary := &entities.Itinerary{}
	var description, destination, startDate, endDate sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&itinerary.ID,
		&itinerary.OwnerID,
		&itinerary.Title,
		&description,
		&destination,
		&startDate,
		&endDate,
		&itinerary.IsArchived,
		&itinerary.CreatedAt,
		&itinerary.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("itinerary with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get itinerary", err)
	}

	itinerary.Description = description.String
	itinerary.Destination = destination.String
	itinerary.StartDate = startDate.String
	itinerary.EndDate = endDate.String

	return itinerary, nil
}

// Update updates an itinerary
func (a *ItineraryAdapter) Update(ctx context.Context, itinerary *entities.Itinerary) error {
	itinerary.UpdatedAt = time.Now()

	record := goqu.Record{
		"title":       itinerary.Title,
		"description": itinerary.Description,
		"destination": itinerary.Destination,
		"start_date":  itinerary.StartDate,
		"end_date":    itinerary.EndDate,
		"is_archived": itinerary.IsArchived,
		"updated_at":  itinerary.UpdatedAt,
	}

	query, args, err := a.db.Update("itineraries").
		Set(record).
		Where(goqu.Ex{"id": itinerary.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteError("failed to update itinerary", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("itinerary with id %s not found", itinerary.ID))
	}

	return nil
}

// Delete deletes an itinerary; segments and checklist items cascade in the schema
func (a *ItineraryAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("itineraries").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete itinerary", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("itinerary with id %s not found", id))
	}

	return nil
}

// ListByOwner retrieves a user's itineraries
func (a *ItineraryAdapter) ListByOwner(ctx context.Context, ownerID string, filter repositories.ItineraryFilter) ([]*entities.Itinerary, error) {
	ds := a.db.Select(itineraryColumns...).
		From("itineraries").
		Where(goqu.Ex{"owner_id": ownerID})

	if !filter.IncludeArchived {
		ds = ds.Where(goqu.Ex{"is_archived": false})
	}

	ds = ds.Order(goqu.I("created_at").Desc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list itineraries", err)
	}
	defer rows.Close()

	var itineraries []*entities.Itinerary
	for rows.Next() {
		itinerary := &entities.Itinerary{}
		var description, destination, startDate, endDate sql.NullString

		err := rows.Scan(
			&itinerary.ID,
			&itinerary.OwnerID,
			&itinerary.Title,
			&description,
			&destination,
			&startDate,
			&endDate,
			&itinerary.IsArchived,
			&itinerary.CreatedAt,
			&itinerary.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan itinerary", err)
		}

		itinerary.Description = description.String
		itinerary.Destination = destination.String
		itinerary.StartDate = startDate.String
		itinerary.EndDate = endDate.String

		itineraries = append(itineraries, itinerary)
	}

	return itineraries, nil
}

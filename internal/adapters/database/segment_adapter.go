package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// SegmentAdapter implements the SegmentRepository interface.
// Segment metadata is stored as a jsonb column.
type SegmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSegmentAdapter creates a new segment adapter
func NewSegmentAdapter(client *postgres.Client) repositories.SegmentRepository {
	return &SegmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var segmentColumns = []interface{}{
	"id", "itinerary_id", "type", "title", "description",
	"location_name", "location_address", "location_lat", "location_lng",
	"start_time", "end_time", "is_all_day",
	"provider_name", "confirmation_code", "transport_number", "timezone",
	"position", "metadata", "created_at", "updated_at",
}

func marshalSegmentMetadata(metadata map[string]interface{}) (interface{}, error) {
	if metadata == nil {
		return nil, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to marshal segment metadata", err)
	}
	return raw, nil
}

// Create creates a new segment
func (a *SegmentAdapter) Create(ctx context.Context, segment *entities.Segment) error {
	metadata, err := marshalSegmentMetadata(segment.Metadata)
	if err != nil {
		return err
	}

	record := goqu.Record{
		"id":                segment.ID,
		"itinerary_id":      segment.ItineraryID,
		"type":              segment.Type,
		"title":             segment.Title,
		"description":       segment.Description,
		"location_name":     segment.LocationName,
		"location_address":  segment.LocationAddress,
		"location_lat":      segment.LocationLat,
		"location_lng":      segment.LocationLng,
		"start_time":        segment.StartTime,
		"end_time":          segment.EndTime,
		"is_all_day":        segment.IsAllDay,
		"provider_name":     segment.ProviderName,
		"confirmation_code": segment.ConfirmationCode,
		"transport_number":  segment.TransportNumber,
		"timezone":          segment.Timezone,
		"position":          segment.Position,
		"metadata":          metadata,
		"created_at":        segment.CreatedAt,
		"updated_at":        segment.UpdatedAt,
	}

	query, args, err := a.db.Insert("segments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return classifyWriteError("failed to create segment", err)
	}

	return nil
}

// GetByID retrieves a segment by ID
func (a *SegmentAdapter) GetByID(ctx context.Context, id string) (*entities.Segment, error) {
	query, args, err := a.db.Select(segmentColumns...).
		From("segments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	segment, err := scanSegment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("segment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get segment", err)
	}

	return segment, nil
}

// Update updates a segment
func (a *SegmentAdapter) Update(ctx context.Context, segment *entities.Segment) error {
	segment.UpdatedAt = time.Now()

	metadata, err := marshalSegmentMetadata(segment.Metadata)
	if err != nil {
		return err
	}

	record := goqu.Record{
		"type":              segment.Type,
		"title":             segment.Title,
		"description":       segment.Description,
		"location_name":     segment.LocationName,
		"location_address":  segment.LocationAddress,
		"location_lat":      segment.LocationLat,
		"location_lng":      segment.LocationLng,
		"start_time":        segment.StartTime,
		"end_time":          segment.EndTime,
		"is_all_day":        segment.IsAllDay,
		"provider_name":     segment.ProviderName,
		"confirmation_code": segment.ConfirmationCode,
		"transport_number":  segment.TransportNumber,
		"timezone":          segment.Timezone,
		"position":          segment.Position,
		"metadata":          metadata,
		"updated_at":        segment.UpdatedAt,
	}

	query, args, err := a.db.Update("segments").
		Set(record).
		Where(goqu.Ex{"id": segment.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteError("failed to update segment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("segment with id %s not found", segment.ID))
	}

	return nil
}

// Delete deletes a segment; checklist items cascade in the schema
func (a *SegmentAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("segments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete segment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("segment with id %s not found", id))
	}

	return nil
}

// ListByItinerary retrieves segments for an itinerary, ordered by position
func (a *SegmentAdapter) ListByItinerary(ctx context.Context, itineraryID string) ([]*entities.Segment, error) {
	query, args, err := a.db.Select(segmentColumns...).
		From("segments").
		Where(goqu.Ex{"itinerary_id": itineraryID}).
		Order(goqu.I("position").Asc(), goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list segments", err)
	}
	defer rows.Close()

	var segments []*entities.Segment
	for rows.Next() {
		segment, err := scanSegment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan segment", err)
		}
		segments = append(segments, segment)
	}

	return segments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSegment(row rowScanner) (*entities.Segment, error) {
	segment := &entities.Segment{}
	var description, locationName, locationAddress sql.NullString
	var providerName, confirmationCode, transportNumber, timezone sql.NullString
	var locationLat, locationLng sql.NullFloat64
	var startTime, endTime sql.NullTime
	var metadata []byte

	err := row.Scan(
		&segment.ID,
		&segment.ItineraryID,
		&segment.Type,
		&segment.Title,
		&description,
		&locationName,
		&locationAddress,
		&locationLat,
		&locationLng,
		&startTime,
		&endTime,
		&segment.IsAllDay,
		&providerName,
		&confirmationCode,
		&transportNumber,
		&timezone,
		&segment.Position,
		&metadata,
		&segment.CreatedAt,
		&segment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	segment.Description = description.String
	segment.LocationName = locationName.String
	segment.LocationAddress = locationAddress.String
	segment.ProviderName = providerName.String
	segment.ConfirmationCode = confirmationCode.String
	segment.TransportNumber = transportNumber.String
	segment.Timezone = timezone.String

	if locationLat.Valid {
		segment.LocationLat = &locationLat.Float64
	}
	if locationLng.Valid {
		segment.LocationLng = &locationLng.Float64
	}
	if startTime.Valid {
		segment.StartTime = &startTime.Time
	}
	if endTime.Valid {
		segment.EndTime = &endTime.Time
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &segment.Metadata); err != nil {
			return nil, err
		}
	}

	return segment, nil
}

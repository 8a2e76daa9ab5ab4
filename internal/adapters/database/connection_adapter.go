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

// ConnectionAdapter implements the ConnectionRepository interface.
// The per-user connection cap is enforced by an insert trigger on the
// connections table; cap violations surface here as conflict errors.
type ConnectionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConnectionAdapter creates a new connection adapter
func NewConnectionAdapter(client *postgres.Client) repositories.ConnectionRepository {
	return &ConnectionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var connectionColumns = []interface{}{
	"id", "requester_id", "addressee_id", "status", "created_at", "updated_at",
}

// Create creates a new pending connection request
func (a *ConnectionAdapter) Create(ctx context.Context, connection *entities.Connection) error {
	record := goqu.Record{
		"id":           connection.ID,
		"requester_id": connection.RequesterID,
		"addressee_id": connection.AddresseeID,
		"status":       connection.Status,
		"created_at":   connection.CreatedAt,
		"updated_at":   connection.UpdatedAt,
	}

	query, args, err := a.db.Insert("connections").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return classifyWriteError("failed to create connection", err)
	}

	return nil
}

// GetByID retrieves a connection by ID
func (a *ConnectionAdapter) GetByID(ctx context.Context, id string) (*entities.Connection, error) {
	query, args, err := a.db.Select(connectionColumns...).
		From("connections").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	connection := &entities.Connection{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&connection.ID,
		&connection.RequesterID,
		&connection.AddresseeID,
		&connection.Status,
		&connection.CreatedAt,
		&connection.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("connection with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get connection", err)
	}

	return connection, nil
}

// Accept marks a pending connection as accepted
func (a *ConnectionAdapter) Accept(ctx context.Context, id string) error {
	query, args, err := a.db.Update("connections").
		Set(goqu.Record{
			"status":     entities.ConnectionStatusAccepted,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id, "status": entities.ConnectionStatusPending}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build accept query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteError("failed to accept connection", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("pending connection with id %s not found", id))
	}

	return nil
}

// Delete removes a connection
func (a *ConnectionAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("connections").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete connection", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("connection with id %s not found", id))
	}

	return nil
}

// DeleteBetween removes any connection between two users, in either direction
func (a *ConnectionAdapter) DeleteBetween(ctx context.Context, userA, userB string) error {
	query, args, err := a.db.Delete("connections").
		Where(goqu.Or(
			goqu.Ex{"requester_id": userA, "addressee_id": userB},
			goqu.Ex{"requester_id": userB, "addressee_id": userA},
		)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete connections between users", err)
	}

	return nil
}

// ListForUser retrieves connections where the user is either side
func (a *ConnectionAdapter) ListForUser(ctx context.Context, userID string, filter repositories.ConnectionFilter) ([]*entities.Connection, error) {
	ds := a.db.Select(connectionColumns...).
		From("connections").
		Where(goqu.Or(
			goqu.Ex{"requester_id": userID},
			goqu.Ex{"addressee_id": userID},
		))

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
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
		return nil, apperrors.NewInternalError("failed to list connections", err)
	}
	defer rows.Close()

	var connections []*entities.Connection
	for rows.Next() {
		connection := &entities.Connection{}
		err := rows.Scan(
			&connection.ID,
			&connection.RequesterID,
			&connection.AddresseeID,
			&connection.Status,
			&connection.CreatedAt,
			&connection.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan connection", err)
		}
		connections = append(connections, connection)
	}

	return connections, nil
}

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

// MatchAdapter implements the MatchRepository interface. Match rows are
// produced by a stored procedure over the connection graph; this adapter
// only reads them and records responses.
type MatchAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewMatchAdapter creates a new match adapter
func NewMatchAdapter(client *postgres.Client) repositories.MatchRepository {
	return &MatchAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var matchColumns = []interface{}{
	"id", "user_id", "first_id", "second_id", "score", "status", "responded_at", "created_at",
}

// GetByID retrieves a match by ID
func (a *MatchAdapter) GetByID(ctx context.Context, id string) (*entities.Match, error) {
	query, args, err := a.db.Select(matchColumns...).
		From("matches").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	match := &entities.Match{}
	var respondedAt sql.NullTime

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&match.ID,
		&match.UserID,
		&match.FirstID,
		&match.SecondID,
		&match.Score,
		&match.Status,
		&respondedAt,
		&match.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("match with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get match", err)
	}

	if respondedAt.Valid {
		match.RespondedAt = &respondedAt.Time
	}

	return match, nil
}

// ListForUser retrieves matches suggested to a user
func (a *MatchAdapter) ListForUser(ctx context.Context, userID string, filter repositories.MatchFilter) ([]*entities.Match, error) {
	ds := a.db.Select(matchColumns...).
		From("matches").
		Where(goqu.Ex{"user_id": userID})

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}

	ds = ds.Order(goqu.I("score").Desc())

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
		return nil, apperrors.NewInternalError("failed to list matches", err)
	}
	defer rows.Close()

	var matches []*entities.Match
	for rows.Next() {
		match := &entities.Match{}
		var respondedAt sql.NullTime

		err := rows.Scan(
			&match.ID,
			&match.UserID,
			&match.FirstID,
			&match.SecondID,
			&match.Score,
			&match.Status,
			&respondedAt,
			&match.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan match", err)
		}

		if respondedAt.Valid {
			match.RespondedAt = &respondedAt.Time
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// UpdateStatus records a response to a suggested match
func (a *MatchAdapter) UpdateStatus(ctx context.Context, id string, status entities.MatchStatus) error {
	query, args, err := a.db.Update("matches").
		Set(goqu.Record{
			"status":       status,
			"responded_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id, "status": entities.MatchStatusSuggested}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteError("failed to update match", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("open match with id %s not found", id))
	}

	return nil
}

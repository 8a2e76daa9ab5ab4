package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// SessionAuthAdapter implements the AuthProvider interface against the
// sessions table written by the authentication service.
type SessionAuthAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSessionAuthAdapter creates a new session auth adapter
func NewSessionAuthAdapter(client *postgres.Client) providers.AuthProvider {
	return &SessionAuthAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Authenticate resolves a session token to a user id. Expired or revoked
// sessions are treated the same as unknown tokens.
func (a *SessionAuthAdapter) Authenticate(ctx context.Context, token string) (string, error) {
	query, args, err := a.db.Select("user_id").
		From("sessions").
		Where(goqu.Ex{"token": token, "revoked_at": nil}).
		Where(goqu.I("expires_at").Gt(time.Now())).
		ToSQL()
	if err != nil {
		return "", apperrors.NewInternalError("failed to build session query", err)
	}

	var userID string
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&userID)

	if err == sql.ErrNoRows {
		return "", apperrors.NewUnauthorizedError("invalid or expired session token")
	}
	if err != nil {
		return "", apperrors.NewInternalError("failed to resolve session", err)
	}

	return userID, nil
}

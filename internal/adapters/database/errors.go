package database

import (
	"errors"

	"github.com/lib/pq"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// classifyWriteError maps PostgreSQL errors to application errors.
// Domain invariants such as the per-user connection cap live in database
// triggers, which reject writes with raise_exception (P0001).
func classifyWriteError(message string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return apperrors.NewConflictError(message + ": already exists")
		case "23503":
			return apperrors.NewValidationError(message + ": referenced row does not exist")
		case "P0001":
			return apperrors.NewConflictError(pqErr.Message)
		}
	}
	return apperrors.NewInternalError(message, err)
}

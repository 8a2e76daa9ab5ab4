package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// AuthMiddleware resolves the bearer session token on every request and
// stores the authenticated user id in the request context.
type AuthMiddleware struct {
	auth providers.AuthProvider
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(auth providers.AuthProvider) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Middleware wraps a handler with session authentication
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		userID, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeUnauthorized {
				unauthorized(w, appErr.Message)
				return
			}
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user id, if any
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}

// WithUserID returns a context carrying the given user id (used for tests)
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

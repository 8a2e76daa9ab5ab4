package providers

import "context"

// AuthProvider resolves a bearer session token to a user id.
// The session store itself (issuance, refresh, revocation) is owned by the
// external authentication service.
type AuthProvider interface {
	// Authenticate returns the user id for a valid session token
	Authenticate(ctx context.Context, token string) (string, error)
}

package interfaces

import (
	"context"

	"github.com/aptakhin/lala-search/internal/models"
)

// SessionService validates session tokens against the system keyspace and
// resolves the authenticated user's tenant.
type SessionService interface {
	// ValidateSession hashes the raw cookie token, loads the session, and
	// returns the user with their tenant and role. Expired sessions are
	// deleted on sight and reported as invalid.
	ValidateSession(ctx context.Context, token string) (*models.AuthUser, error)
}

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/common"
	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// ErrInvalidSession covers every reason a token fails validation: unknown,
// expired, suspended user, or missing membership. Handlers map it to 401
// without revealing which check failed.
var ErrInvalidSession = errors.New("invalid or expired session")

// Service validates session tokens against the system keyspace. Tokens are
// opaque; only their SHA-256 hash is stored, so a database read never exposes
// a usable credential.
type Service struct {
	store  interfaces.AuthStorage
	logger arbor.ILogger
}

func NewService(store interfaces.AuthStorage, logger arbor.ILogger) *Service {
	return &Service{store: store, logger: logger}
}

// HashToken derives the storage key for a raw session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateSession resolves a raw cookie token to the authenticated user and
// their tenant. Expired sessions are deleted on sight. The last-active
// timestamp is refreshed best-effort; a failed touch never fails the request.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.AuthUser, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	hash := HashToken(token)

	session, err := s.store.GetSession(ctx, hash)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidSession
	}

	if session.IsExpired() {
		if err := s.store.DeleteSession(ctx, hash); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to delete expired session")
		}
		return nil, ErrInvalidSession
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != "active" {
		return nil, ErrInvalidSession
	}

	membership, err := s.store.GetOrgMembership(ctx, session.TenantID, session.UserID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrInvalidSession
	}

	// Fire-and-forget: the request must not wait on, or fail from, the
	// last-active update.
	common.SafeGo(s.logger, "session-touch", func() {
		if err := s.store.TouchSession(context.Background(), hash); err != nil {
			s.logger.Debug().Err(err).Msg("Failed to touch session")
		}
	})

	return &models.AuthUser{
		UserID:   user.UserID,
		Email:    user.Email,
		TenantID: session.TenantID,
		Role:     membership.Role,
	}, nil
}

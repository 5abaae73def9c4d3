package cassandra

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// AuthStorage implements the AuthStorage interface against the system
// keyspace's users, sessions and org_memberships tables. Only reads and
// session maintenance live here; issuing sessions is the auth subsystem's
// job, not this agent's.
type AuthStorage struct {
	conn           *Connection
	systemKeyspace string
	logger         arbor.ILogger
}

// NewAuthStorage creates an AuthStorage over the system keyspace.
func NewAuthStorage(conn *Connection, systemKeyspace string, logger arbor.ILogger) interfaces.AuthStorage {
	return &AuthStorage{
		conn:           conn,
		systemKeyspace: systemKeyspace,
		logger:         logger,
	}
}

// GetSession looks up a session by token hash, or nil when none exists.
func (s *AuthStorage) GetSession(ctx context.Context, sessionIDHash string) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT session_id_hash, user_id, tenant_id, created_at, expires_at, last_active_at
		FROM %s.sessions WHERE session_id_hash = ?`, s.systemKeyspace)

	var session models.Session
	var userID gocql.UUID
	err := s.conn.session.Query(query, sessionIDHash).WithContext(ctx).Scan(
		&session.SessionIDHash, &userID, &session.TenantID,
		&session.CreatedAt, &session.ExpiresAt, &session.LastActiveAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	session.UserID = uuid.UUID(userID)
	return &session, nil
}

// DeleteSession removes a session row; deleting an unknown hash is a no-op.
func (s *AuthStorage) DeleteSession(ctx context.Context, sessionIDHash string) error {
	query := fmt.Sprintf(`DELETE FROM %s.sessions WHERE session_id_hash = ?`, s.systemKeyspace)

	if err := s.conn.session.Query(query, sessionIDHash).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// TouchSession advances last_active_at. Callers treat this as fire-and-forget.
func (s *AuthStorage) TouchSession(ctx context.Context, sessionIDHash string) error {
	query := fmt.Sprintf(`UPDATE %s.sessions SET last_active_at = ?
		WHERE session_id_hash = ?`, s.systemKeyspace)

	if err := s.conn.session.Query(query, time.Now().UTC(), sessionIDHash).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// GetUserByID returns a user row, or nil when none exists.
func (s *AuthStorage) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT user_id, email, email_verified, status, last_login_at, created_at, updated_at
		FROM %s.users WHERE user_id = ?`, s.systemKeyspace)

	var user models.User
	var id gocql.UUID
	var lastLoginAt time.Time
	err := s.conn.session.Query(query, gocql.UUID(userID)).WithContext(ctx).Scan(
		&id, &user.Email, &user.EmailVerified, &user.Status,
		&lastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w", userID, err)
	}

	user.UserID = uuid.UUID(id)
	if !lastLoginAt.IsZero() {
		user.LastLoginAt = &lastLoginAt
	}
	return &user, nil
}

// GetOrgMembership returns the user's membership in a tenant, or nil when
// the user does not belong to it.
func (s *AuthStorage) GetOrgMembership(ctx context.Context, tenantID string, userID uuid.UUID) (*models.OrgMembership, error) {
	query := fmt.Sprintf(`SELECT tenant_id, user_id, role, joined_at
		FROM %s.org_memberships WHERE tenant_id = ? AND user_id = ?`, s.systemKeyspace)

	var membership models.OrgMembership
	var id gocql.UUID
	err := s.conn.session.Query(query, tenantID, gocql.UUID(userID)).WithContext(ctx).Scan(
		&membership.TenantID, &id, &membership.Role, &membership.JoinedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read org membership for %s in %s: %w", userID, tenantID, err)
	}

	membership.UserID = uuid.UUID(id)
	return &membership, nil
}

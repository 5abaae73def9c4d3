package models

import (
	"time"

	"github.com/google/uuid"
)

// User is one account row in the system keyspace.
type User struct {
	UserID        uuid.UUID  `json:"user_id"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	Status        string     `json:"status"` // active, suspended, deleted
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Session is one login session in the system keyspace, keyed by the SHA-256
// hash of the opaque session token. The raw token never touches the database.
type Session struct {
	SessionIDHash string    `json:"-"`
	UserID        uuid.UUID `json:"user_id"`
	TenantID      string    `json:"tenant_id"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	LastActiveAt  time.Time `json:"last_active_at"`
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// OrgMembership ties a user to a tenant with a role.
type OrgMembership struct {
	TenantID string    `json:"tenant_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"` // owner, admin, member
	JoinedAt time.Time `json:"joined_at"`
}

// AuthUser is the resolved identity attached to an authenticated request.
// TenantID is the tenant's keyspace name.
type AuthUser struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	TenantID string    `json:"tenant_id"`
	Role     string    `json:"role"`
}

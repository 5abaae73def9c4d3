package cassandra

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
)

// TenantStorage implements the TenantStorage interface against the system
// keyspace's tenants table. A tenant's id doubles as its keyspace name.
type TenantStorage struct {
	conn           *Connection
	systemKeyspace string
	logger         arbor.ILogger
}

// NewTenantStorage creates a TenantStorage over the system keyspace.
func NewTenantStorage(conn *Connection, systemKeyspace string, logger arbor.ILogger) interfaces.TenantStorage {
	return &TenantStorage{
		conn:           conn,
		systemKeyspace: systemKeyspace,
		logger:         logger,
	}
}

// EnsureDefaultTenant inserts the tenant row only if it does not already
// exist. The LWT makes concurrent bootstraps race-free.
func (s *TenantStorage) EnsureDefaultTenant(ctx context.Context, tenantID, name string) error {
	query := fmt.Sprintf(`INSERT INTO %s.tenants (tenant_id, name, created_at)
		VALUES (?, ?, ?) IF NOT EXISTS`, s.systemKeyspace)

	applied := map[string]interface{}{}
	_, err := s.conn.session.Query(query, tenantID, name, time.Now().UTC()).
		WithContext(ctx).MapScanCAS(applied)
	if err != nil {
		return fmt.Errorf("failed to ensure tenant %s: %w", tenantID, err)
	}
	return nil
}

// CreateTenant registers a tenant, keeping an existing row's created_at via
// the same conditional insert as EnsureDefaultTenant.
func (s *TenantStorage) CreateTenant(ctx context.Context, tenantID, name string) error {
	return s.EnsureDefaultTenant(ctx, tenantID, name)
}

// GetTenantName returns the display name for a tenant id, or nil when the
// tenant is not registered.
func (s *TenantStorage) GetTenantName(ctx context.Context, tenantID string) (*string, error) {
	query := fmt.Sprintf(`SELECT name FROM %s.tenants WHERE tenant_id = ?`, s.systemKeyspace)

	var name string
	err := s.conn.session.Query(query, tenantID).WithContext(ctx).Scan(&name)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant %s: %w", tenantID, err)
	}
	return &name, nil
}

// ListTenantIDs enumerates every registered tenant keyspace. The scheduler
// spawns one worker per returned id at startup.
func (s *TenantStorage) ListTenantIDs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT tenant_id FROM %s.tenants`, s.systemKeyspace)

	iter := s.conn.session.Query(query).WithContext(ctx).Iter()

	var ids []string
	var id string
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return ids, nil
}

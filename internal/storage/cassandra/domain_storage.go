package cassandra

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// DomainStorage implements the DomainStorage interface against the tenant
// keyspace's allowed_domains table.
type DomainStorage struct {
	conn     *Connection
	keyspace string
	logger   arbor.ILogger
}

// NewDomainStorage creates a DomainStorage bound to one tenant keyspace.
func NewDomainStorage(conn *Connection, keyspace string, logger arbor.ILogger) interfaces.DomainStorage {
	return &DomainStorage{
		conn:     conn,
		keyspace: keyspace,
		logger:   logger,
	}
}

// IsAllowed reports whether the domain has an allow-list row.
func (s *DomainStorage) IsAllowed(ctx context.Context, domain string) (bool, error) {
	query := fmt.Sprintf(`SELECT domain FROM %s.allowed_domains WHERE domain = ?`, s.keyspace)

	var found string
	err := s.conn.session.Query(query, domain).WithContext(ctx).Scan(&found)
	if err == gocql.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check allowed domain %s: %w", domain, err)
	}
	return true, nil
}

// Add inserts or overwrites an allow-list row.
func (s *DomainStorage) Add(ctx context.Context, domain, addedBy string, notes *string) error {
	query := fmt.Sprintf(`INSERT INTO %s.allowed_domains (domain, added_by, notes, added_at)
		VALUES (?, ?, ?, ?)`, s.keyspace)

	err := s.conn.session.Query(query, domain, addedBy, notes, time.Now().UTC()).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to add allowed domain %s: %w", domain, err)
	}

	s.logger.Debug().Str("domain", domain).Msg("Domain added to allow list")
	return nil
}

// List returns every allow-list row.
func (s *DomainStorage) List(ctx context.Context) ([]models.AllowedDomain, error) {
	query := fmt.Sprintf(`SELECT domain, added_by, notes, added_at FROM %s.allowed_domains`, s.keyspace)

	iter := s.conn.session.Query(query).WithContext(ctx).Iter()

	domains := []models.AllowedDomain{}
	var domain, addedBy string
	var notes *string
	var addedAt time.Time
	for iter.Scan(&domain, &addedBy, &notes, &addedAt) {
		entry := models.AllowedDomain{
			Domain:  domain,
			AddedBy: addedBy,
			Notes:   notes,
		}
		if !addedAt.IsZero() {
			at := addedAt
			entry.AddedAt = &at
		}
		domains = append(domains, entry)
		notes = nil
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list allowed domains: %w", err)
	}
	return domains, nil
}

// Remove deletes an allow-list row. Removing an unlisted domain succeeds.
func (s *DomainStorage) Remove(ctx context.Context, domain string) error {
	query := fmt.Sprintf(`DELETE FROM %s.allowed_domains WHERE domain = ?`, s.keyspace)

	err := s.conn.session.Query(query, domain).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to remove allowed domain %s: %w", domain, err)
	}
	return nil
}

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// DefaultTenantName is the display name used when the bootstrap registers
// the base keyspace as a tenant.
const DefaultTenantName = "Default"

// Supervisor owns one Processor per tenant keyspace. In single-tenant mode
// that is just the configured base keyspace; in multi-tenant mode the tenant
// registry decides, and tenants added after startup need a restart.
type Supervisor struct {
	store        interfaces.StorageManager
	fetcher      interfaces.Fetcher
	objects      interfaces.ObjectStorage
	search       interfaces.SearchService
	mode         models.DeploymentMode
	seedTenants  []string
	pollInterval time.Duration
	logger       arbor.ILogger

	processors []*Processor
}

// NewSupervisor creates a supervisor over the base storage manager.
// seedTenants are keyspace names registered at startup in multi-tenant mode
// before the registry is read back.
func NewSupervisor(
	store interfaces.StorageManager,
	fetcher interfaces.Fetcher,
	objects interfaces.ObjectStorage,
	searchService interfaces.SearchService,
	mode models.DeploymentMode,
	seedTenants []string,
	pollInterval time.Duration,
	logger arbor.ILogger,
) *Supervisor {
	return &Supervisor{
		store:        store,
		fetcher:      fetcher,
		objects:      objects,
		search:       searchService,
		mode:         mode,
		seedTenants:  seedTenants,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start resolves the tenant keyspaces and spawns one processor per tenant.
func (s *Supervisor) Start(ctx context.Context) error {
	keyspaces, err := s.resolveTenants(ctx)
	if err != nil {
		return err
	}

	for _, keyspace := range keyspaces {
		store := s.store.WithKeyspace(keyspace)

		// Search document ids are tenant-scoped only in multi-tenant mode.
		var tenantID *string
		if s.mode.IsMultiTenant() {
			id := keyspace
			tenantID = &id
		}

		processor := NewProcessor(store, s.fetcher, s.objects, s.search, tenantID, s.pollInterval, s.logger)
		processor.Start()
		s.processors = append(s.processors, processor)
	}

	s.logger.Info().
		Int("tenants", len(s.processors)).
		Str("mode", s.mode.String()).
		Msg("Crawl supervisor started")
	return nil
}

// Stop fans out to every processor and waits for all of them.
func (s *Supervisor) Stop() {
	for _, processor := range s.processors {
		processor.Stop()
	}
	s.logger.Info().Msg("Crawl supervisor stopped")
}

// resolveTenants returns the keyspaces to crawl. Multi-tenant mode seeds the
// registry with the base keyspace and any configured tenants, then reads the
// registry back so it stays the single source of truth.
func (s *Supervisor) resolveTenants(ctx context.Context) ([]string, error) {
	if !s.mode.IsMultiTenant() {
		return []string{s.store.Keyspace()}, nil
	}

	tenants := s.store.TenantStorage()
	if err := tenants.EnsureDefaultTenant(ctx, s.store.Keyspace(), DefaultTenantName); err != nil {
		return nil, fmt.Errorf("failed to ensure default tenant: %w", err)
	}
	for _, keyspace := range s.seedTenants {
		if err := tenants.CreateTenant(ctx, keyspace, keyspace); err != nil {
			return nil, fmt.Errorf("failed to register tenant %s: %w", keyspace, err)
		}
	}

	keyspaces, err := tenants.ListTenantIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return keyspaces, nil
}

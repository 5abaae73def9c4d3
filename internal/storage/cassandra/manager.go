package cassandra

import (
	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
)

// Manager implements the StorageManager interface, binding every per-entity
// storage to one tenant keyspace over the shared connection. Managers are
// cheap handles: WithKeyspace clones one for another tenant without touching
// the pool, which is how one process serves many tenants concurrently.
type Manager struct {
	conn            *Connection
	keyspace        string
	systemKeyspace  string
	crawlingDefault bool
	logger          arbor.ILogger

	queue    interfaces.QueueStorage
	pages    interfaces.PageStorage
	domains  interfaces.DomainStorage
	errors   interfaces.ErrorStorage
	settings interfaces.SettingsStorage
	tenants  interfaces.TenantStorage
	auth     interfaces.AuthStorage
}

// NewManager creates a storage manager scoped to the given tenant keyspace.
// crawlingDefault is the crawling_enabled fallback when a tenant has no
// stored setting.
func NewManager(conn *Connection, keyspace, systemKeyspace string, crawlingDefault bool, logger arbor.ILogger) interfaces.StorageManager {
	return &Manager{
		conn:            conn,
		keyspace:        keyspace,
		systemKeyspace:  systemKeyspace,
		crawlingDefault: crawlingDefault,
		logger:          logger,
		queue:           NewQueueStorage(conn, keyspace, logger),
		pages:           NewPageStorage(conn, keyspace, logger),
		domains:         NewDomainStorage(conn, keyspace, logger),
		errors:          NewErrorStorage(conn, keyspace, logger),
		settings:        NewSettingsStorage(conn, keyspace, crawlingDefault, logger),
		tenants:         NewTenantStorage(conn, systemKeyspace, logger),
		auth:            NewAuthStorage(conn, systemKeyspace, logger),
	}
}

// Keyspace returns the tenant keyspace this manager is bound to.
func (m *Manager) Keyspace() string {
	return m.keyspace
}

// WithKeyspace returns a manager over the same connection scoped to another
// tenant keyspace.
func (m *Manager) WithKeyspace(keyspace string) interfaces.StorageManager {
	if keyspace == m.keyspace {
		return m
	}
	return NewManager(m.conn, keyspace, m.systemKeyspace, m.crawlingDefault, m.logger)
}

// QueueStorage returns the crawl queue storage.
func (m *Manager) QueueStorage() interfaces.QueueStorage {
	return m.queue
}

// PageStorage returns the crawled page storage.
func (m *Manager) PageStorage() interfaces.PageStorage {
	return m.pages
}

// DomainStorage returns the allow-list storage.
func (m *Manager) DomainStorage() interfaces.DomainStorage {
	return m.domains
}

// ErrorStorage returns the crawl error storage.
func (m *Manager) ErrorStorage() interfaces.ErrorStorage {
	return m.errors
}

// SettingsStorage returns the per-tenant settings storage.
func (m *Manager) SettingsStorage() interfaces.SettingsStorage {
	return m.settings
}

// TenantStorage returns the tenant registry storage.
func (m *Manager) TenantStorage() interfaces.TenantStorage {
	return m.tenants
}

// AuthStorage returns the user/session storage.
func (m *Manager) AuthStorage() interfaces.AuthStorage {
	return m.auth
}

// Close closes the shared connection. Only the root manager should call
// this; keyspace-scoped clones borrow the pool.
func (m *Manager) Close() error {
	m.conn.Close()
	return nil
}

package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aptakhin/lala-search/internal/models"
)

// QueueStorage - interface for crawl queue persistence
type QueueStorage interface {
	// NextEntry returns at most one entry in storage order, nil when the
	// queue is empty. No fairness or priority order is promised.
	NextEntry(ctx context.Context) (*models.CrawlQueueEntry, error)
	Insert(ctx context.Context, entry *models.CrawlQueueEntry) error
	// Delete removes the entry by its full primary key. Deleting a row
	// another worker already claimed is a silent no-op.
	Delete(ctx context.Context, entry *models.CrawlQueueEntry) error
	// RequeueWithRetry inserts the retry row for a failed entry: priority+1,
	// attempt_count+1, scheduled_at pushed out by 2^attempt_count minutes,
	// created_at preserved.
	RequeueWithRetry(ctx context.Context, entry *models.CrawlQueueEntry, now time.Time) error
}

// PageStorage - interface for crawled page persistence
type PageStorage interface {
	Upsert(ctx context.Context, page *models.CrawledPage) error
	Get(ctx context.Context, domain, urlPath string) (*models.CrawledPage, error)
	Exists(ctx context.Context, domain, urlPath string) (bool, error)
	// CountToday reads the pages_crawled counter for the current date across
	// all hours and domains. Counters are advisory, unset reads as zero.
	CountToday(ctx context.Context) (int64, error)
}

// DomainStorage - interface for the per-tenant domain allow-list
type DomainStorage interface {
	IsAllowed(ctx context.Context, domain string) (bool, error)
	Add(ctx context.Context, domain, addedBy string, notes *string) error
	List(ctx context.Context) ([]models.AllowedDomain, error)
	// Remove is idempotent, removing an unlisted domain succeeds.
	Remove(ctx context.Context, domain string) error
}

// ErrorStorage - interface for the crawl error log
type ErrorStorage interface {
	LogError(ctx context.Context, crawlError *models.CrawlError) error
}

// SettingsStorage - interface for per-tenant settings
type SettingsStorage interface {
	// IsCrawlingEnabled returns the stored flag, falling back to the
	// environment default when no row exists.
	IsCrawlingEnabled(ctx context.Context) (bool, error)
	SetCrawlingEnabled(ctx context.Context, enabled bool) error
}

// TenantStorage - interface for the tenant registry in the system keyspace
type TenantStorage interface {
	EnsureDefaultTenant(ctx context.Context, tenantID, name string) error
	CreateTenant(ctx context.Context, tenantID, name string) error
	GetTenantName(ctx context.Context, tenantID string) (*string, error)
	ListTenantIDs(ctx context.Context) ([]string, error)
}

// AuthStorage - interface for user and session data in the system keyspace
type AuthStorage interface {
	// GetSession looks up a session by the SHA-256 hash of its token.
	GetSession(ctx context.Context, sessionIDHash string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionIDHash string) error
	// TouchSession updates last_active_at. Callers treat it as best-effort.
	TouchSession(ctx context.Context, sessionIDHash string) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetOrgMembership(ctx context.Context, tenantID string, userID uuid.UUID) (*models.OrgMembership, error)
}

// StorageManager - composite interface for all storage bound to one keyspace
type StorageManager interface {
	// Keyspace returns the tenant keyspace this manager is bound to.
	Keyspace() string
	// WithKeyspace returns a manager over the same connection pool scoped to
	// another keyspace. No session state changes hands between tenants.
	WithKeyspace(keyspace string) StorageManager

	QueueStorage() QueueStorage
	PageStorage() PageStorage
	DomainStorage() DomainStorage
	ErrorStorage() ErrorStorage
	SettingsStorage() SettingsStorage
	TenantStorage() TenantStorage
	AuthStorage() AuthStorage

	Close() error
}

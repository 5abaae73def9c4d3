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

// PageStorage implements the PageStorage interface against the tenant
// keyspace's crawled_pages table and its crawl_stats counters.
type PageStorage struct {
	conn     *Connection
	keyspace string
	logger   arbor.ILogger
}

// NewPageStorage creates a PageStorage bound to one tenant keyspace.
func NewPageStorage(conn *Connection, keyspace string, logger arbor.ILogger) interfaces.PageStorage {
	return &PageStorage{
		conn:     conn,
		keyspace: keyspace,
		logger:   logger,
	}
}

// Upsert writes the page row and bumps the pages_crawled counter for the
// current (date, hour, domain) partition. A counter failure is logged and
// swallowed; stats are advisory and must never fail a crawl.
func (s *PageStorage) Upsert(ctx context.Context, page *models.CrawledPage) error {
	query := fmt.Sprintf(`INSERT INTO %s.crawled_pages
		(domain, url_path, url, storage_id, storage_compression, last_crawled_at,
		 next_crawl_at, crawl_frequency_hours, http_status, content_hash,
		 content_length, robots_allowed, error_message, crawl_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.keyspace)

	var storageID *gocql.UUID
	if page.StorageID != nil {
		id := gocql.UUID(*page.StorageID)
		storageID = &id
	}

	err := s.conn.session.Query(query,
		page.Domain, page.URLPath, page.URL, storageID, int(page.StorageCompression),
		page.LastCrawledAt, page.NextCrawlAt, page.CrawlFrequencyHours,
		page.HTTPStatus, page.ContentHash, page.ContentLength, page.RobotsAllowed,
		page.ErrorMessage, page.CrawlCount, page.CreatedAt, page.UpdatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to upsert crawled page %s%s: %w", page.Domain, page.URLPath, err)
	}

	if err := incrementStatsCounter(ctx, s.conn, s.keyspace, "pages_crawled", page.Domain, page.LastCrawledAt); err != nil {
		s.logger.Warn().Err(err).
			Str("domain", page.Domain).
			Msg("Failed to increment pages_crawled counter")
	}
	return nil
}

// Get returns the page for (domain, url_path), or nil when none exists.
func (s *PageStorage) Get(ctx context.Context, domain, urlPath string) (*models.CrawledPage, error) {
	query := fmt.Sprintf(`SELECT domain, url_path, url, storage_id, storage_compression,
		last_crawled_at, next_crawl_at, crawl_frequency_hours, http_status, content_hash,
		content_length, robots_allowed, error_message, crawl_count, created_at, updated_at
		FROM %s.crawled_pages WHERE domain = ? AND url_path = ?`, s.keyspace)

	var page models.CrawledPage
	var storageID gocql.UUID
	var compression int
	var errorMessage string

	err := s.conn.session.Query(query, domain, urlPath).WithContext(ctx).Scan(
		&page.Domain, &page.URLPath, &page.URL, &storageID, &compression,
		&page.LastCrawledAt, &page.NextCrawlAt, &page.CrawlFrequencyHours,
		&page.HTTPStatus, &page.ContentHash, &page.ContentLength,
		&page.RobotsAllowed, &errorMessage, &page.CrawlCount,
		&page.CreatedAt, &page.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read crawled page %s%s: %w", domain, urlPath, err)
	}

	// Null columns scan as zero values; map them back to absent.
	if storageID != (gocql.UUID{}) {
		id := uuid.UUID(storageID)
		page.StorageID = &id
	}
	page.StorageCompression = models.ParseCompressionType(compression)
	if errorMessage != "" {
		page.ErrorMessage = &errorMessage
	}
	return &page, nil
}

// Exists reports whether a page row exists for (domain, url_path).
func (s *PageStorage) Exists(ctx context.Context, domain, urlPath string) (bool, error) {
	query := fmt.Sprintf(`SELECT domain FROM %s.crawled_pages
		WHERE domain = ? AND url_path = ?`, s.keyspace)

	var found string
	err := s.conn.session.Query(query, domain, urlPath).WithContext(ctx).Scan(&found)
	if err == gocql.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check crawled page %s%s: %w", domain, urlPath, err)
	}
	return true, nil
}

// CountToday sums the pages_crawled counters for today's partition. A counter
// column that was never incremented reads as null; those rows count as zero.
func (s *PageStorage) CountToday(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT pages_crawled FROM %s.crawl_stats WHERE date = ?`, s.keyspace)

	iter := s.conn.session.Query(query, time.Now().UTC().Format("2006-01-02")).
		WithContext(ctx).Iter()

	var total int64
	var count *int64
	for iter.Scan(&count) {
		if count != nil {
			total += *count
		}
		count = nil
	}
	if err := iter.Close(); err != nil {
		return 0, fmt.Errorf("failed to read crawl stats: %w", err)
	}
	return total, nil
}

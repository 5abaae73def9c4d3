package cassandra

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// ErrorStorage implements the ErrorStorage interface against the tenant
// keyspace's crawl_errors table.
type ErrorStorage struct {
	conn     *Connection
	keyspace string
	logger   arbor.ILogger
}

// NewErrorStorage creates an ErrorStorage bound to one tenant keyspace.
func NewErrorStorage(conn *Connection, keyspace string, logger arbor.ILogger) interfaces.ErrorStorage {
	return &ErrorStorage{
		conn:     conn,
		keyspace: keyspace,
		logger:   logger,
	}
}

// LogError writes a crawl error row and bumps the pages_failed counter for
// the current (date, hour, domain) partition. Counter failures are logged
// and swallowed, same as pages_crawled.
func (s *ErrorStorage) LogError(ctx context.Context, crawlError *models.CrawlError) error {
	query := fmt.Sprintf(`INSERT INTO %s.crawl_errors
		(domain, occurred_at, url, error_type, error_message, attempt_count, stack_trace)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, s.keyspace)

	err := s.conn.session.Query(query,
		crawlError.Domain, crawlError.OccurredAt, crawlError.URL,
		string(crawlError.ErrorType), crawlError.ErrorMessage,
		crawlError.AttemptCount, crawlError.StackTrace).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to log crawl error for %s: %w", crawlError.URL, err)
	}

	if err := incrementStatsCounter(ctx, s.conn, s.keyspace, "pages_failed", crawlError.Domain, crawlError.OccurredAt); err != nil {
		s.logger.Warn().Err(err).
			Str("domain", crawlError.Domain).
			Msg("Failed to increment pages_failed counter")
	}
	return nil
}

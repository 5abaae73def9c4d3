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

// QueueStorage implements the QueueStorage interface against the tenant
// keyspace's crawl_queue table.
type QueueStorage struct {
	conn     *Connection
	keyspace string
	logger   arbor.ILogger
}

// NewQueueStorage creates a QueueStorage bound to one tenant keyspace.
func NewQueueStorage(conn *Connection, keyspace string, logger arbor.ILogger) interfaces.QueueStorage {
	return &QueueStorage{
		conn:     conn,
		keyspace: keyspace,
		logger:   logger,
	}
}

// NextEntry returns at most one queue entry in whatever order the store
// yields partitions. No ORDER BY: workers must not assume priority or FIFO
// order, only that the queue eventually drains.
func (s *QueueStorage) NextEntry(ctx context.Context) (*models.CrawlQueueEntry, error) {
	query := fmt.Sprintf(`SELECT priority, scheduled_at, url, domain, last_attempt_at, attempt_count, created_at
		FROM %s.crawl_queue LIMIT 1`, s.keyspace)

	var entry models.CrawlQueueEntry
	var lastAttemptAt time.Time

	err := s.conn.session.Query(query).WithContext(ctx).Scan(
		&entry.Priority, &entry.ScheduledAt, &entry.URL, &entry.Domain,
		&lastAttemptAt, &entry.AttemptCount, &entry.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read next queue entry: %w", err)
	}

	if !lastAttemptAt.IsZero() {
		entry.LastAttemptAt = &lastAttemptAt
	}
	return &entry, nil
}

// Insert writes a queue entry. Inserting the same (priority, scheduled_at,
// url) twice is an idempotent overwrite.
func (s *QueueStorage) Insert(ctx context.Context, entry *models.CrawlQueueEntry) error {
	query := fmt.Sprintf(`INSERT INTO %s.crawl_queue
		(priority, scheduled_at, url, domain, last_attempt_at, attempt_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, s.keyspace)

	err := s.conn.session.Query(query,
		entry.Priority, entry.ScheduledAt, entry.URL, entry.Domain,
		entry.LastAttemptAt, entry.AttemptCount, entry.CreatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to insert queue entry for %s: %w", entry.URL, err)
	}
	return nil
}

// Delete removes an entry by its full primary key. This is the lease: the
// worker whose delete lands first owns the entry, and a losing worker's
// delete is a silent no-op.
func (s *QueueStorage) Delete(ctx context.Context, entry *models.CrawlQueueEntry) error {
	query := fmt.Sprintf(`DELETE FROM %s.crawl_queue
		WHERE priority = ? AND scheduled_at = ? AND url = ?`, s.keyspace)

	err := s.conn.session.Query(query, entry.Priority, entry.ScheduledAt, entry.URL).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to delete queue entry for %s: %w", entry.URL, err)
	}
	return nil
}

// RequeueWithRetry inserts the retry row for a failed entry: priority+1,
// attempt_count+1, scheduled_at pushed out by 2^attempt_count minutes from
// now, created_at preserved from the original entry.
func (s *QueueStorage) RequeueWithRetry(ctx context.Context, entry *models.CrawlQueueEntry, now time.Time) error {
	backoff := time.Duration(1<<uint(entry.AttemptCount)) * time.Minute

	retry := &models.CrawlQueueEntry{
		Priority:      entry.Priority + 1,
		ScheduledAt:   now.Add(backoff),
		URL:           entry.URL,
		Domain:        entry.Domain,
		LastAttemptAt: &now,
		AttemptCount:  entry.AttemptCount + 1,
		CreatedAt:     entry.CreatedAt,
	}

	if err := s.Insert(ctx, retry); err != nil {
		return err
	}

	s.logger.Debug().
		Str("url", entry.URL).
		Int("attempt", retry.AttemptCount).
		Str("scheduled_at", retry.ScheduledAt.Format(time.RFC3339)).
		Msg("Queue entry requeued with backoff")
	return nil
}

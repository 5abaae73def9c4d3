package cassandra

import (
	"context"
	"fmt"
	"time"
)

// incrementStatsCounter bumps one counter column in crawl_stats for the
// (date, hour, domain) partition derived from the event time. Counters are
// advisory; callers log failures instead of propagating them.
func incrementStatsCounter(ctx context.Context, conn *Connection, keyspace, column, domain string, at time.Time) error {
	at = at.UTC()
	query := fmt.Sprintf(`UPDATE %s.crawl_stats SET %s = %s + 1
		WHERE date = ? AND hour = ? AND domain = ?`, keyspace, column, column)

	return conn.session.Query(query, at.Format("2006-01-02"), at.Hour(), domain).
		WithContext(ctx).Exec()
}

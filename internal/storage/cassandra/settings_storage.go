package cassandra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gocql/gocql"
	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// SettingsStorage implements the SettingsStorage interface against the
// tenant keyspace's settings table.
type SettingsStorage struct {
	conn     *Connection
	keyspace string
	// crawlingDefault is returned when no crawling_enabled row exists:
	// enabled in dev environments, disabled in prod.
	crawlingDefault bool
	logger          arbor.ILogger
}

// NewSettingsStorage creates a SettingsStorage bound to one tenant keyspace.
func NewSettingsStorage(conn *Connection, keyspace string, crawlingDefault bool, logger arbor.ILogger) interfaces.SettingsStorage {
	return &SettingsStorage{
		conn:            conn,
		keyspace:        keyspace,
		crawlingDefault: crawlingDefault,
		logger:          logger,
	}
}

// IsCrawlingEnabled returns the stored crawling_enabled flag, or the
// environment default when the tenant has never set one.
func (s *SettingsStorage) IsCrawlingEnabled(ctx context.Context) (bool, error) {
	query := fmt.Sprintf(`SELECT setting_value FROM %s.settings WHERE setting_key = ?`, s.keyspace)

	var value string
	err := s.conn.session.Query(query, models.SettingCrawlingEnabled).WithContext(ctx).Scan(&value)
	if err == gocql.ErrNotFound {
		return s.crawlingDefault, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read crawling_enabled setting: %w", err)
	}

	enabled, err := strconv.ParseBool(value)
	if err != nil {
		s.logger.Warn().
			Str("value", value).
			Msg("Unparsable crawling_enabled setting, using environment default")
		return s.crawlingDefault, nil
	}
	return enabled, nil
}

// SetCrawlingEnabled stores the crawling_enabled flag.
func (s *SettingsStorage) SetCrawlingEnabled(ctx context.Context, enabled bool) error {
	query := fmt.Sprintf(`INSERT INTO %s.settings (setting_key, setting_value, updated_at)
		VALUES (?, ?, ?)`, s.keyspace)

	err := s.conn.session.Query(query,
		models.SettingCrawlingEnabled, strconv.FormatBool(enabled), time.Now().UTC()).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to store crawling_enabled setting: %w", err)
	}

	s.logger.Info().
		Str("keyspace", s.keyspace).
		Bool("enabled", enabled).
		Msg("Crawling enabled flag updated")
	return nil
}

package storage

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/common"
	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/storage/cassandra"
)

// connectTimeout bounds both the initial cluster dial and individual
// queries. Cassandra client timeouts stay at library defaults otherwise.
const connectTimeout = 10 * time.Second

// NewStorageManager connects to the configured Cassandra cluster and returns
// a storage manager bound to the base tenant keyspace. A connection failure
// here is fatal to startup.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	conn, err := cassandra.NewConnection(config.Cassandra.Hosts, connectTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := conn.EnsureTenantSchema(config.Cassandra.Keyspace, 1); err != nil {
		conn.Close()
		return nil, err
	}
	if config.Deployment.Mode == "multi_tenant" {
		if err := conn.EnsureSystemSchema(config.Cassandra.SystemKeyspace, 1); err != nil {
			conn.Close()
			return nil, err
		}
		for _, keyspace := range config.Cassandra.TenantKeyspaces {
			if err := conn.EnsureTenantSchema(keyspace, 1); err != nil {
				conn.Close()
				return nil, err
			}
		}
	}

	return cassandra.NewManager(
		conn,
		config.Cassandra.Keyspace,
		config.Cassandra.SystemKeyspace,
		config.CrawlingEnabledDefault(),
		logger,
	), nil
}

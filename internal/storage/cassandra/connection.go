package cassandra

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/ternarybob/arbor"
)

// Connection wraps the shared gocql session. The session is created without
// a bound keyspace; every query in this package qualifies its table names, so
// one pool serves any number of tenant keyspaces with no USE statements.
type Connection struct {
	session *gocql.Session
	logger  arbor.ILogger
}

// NewConnection connects to the Cassandra cluster at the given contact
// points. The caller owns the connection and must Close it.
func NewConnection(hosts []string, timeout time.Duration, logger arbor.ILogger) (*Connection, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = timeout
	cluster.ConnectTimeout = timeout

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra at %v: %w", hosts, err)
	}

	logger.Info().
		Strs("hosts", hosts).
		Msg("Cassandra connection established")

	return &Connection{
		session: session,
		logger:  logger,
	}, nil
}

// Session returns the underlying gocql session.
func (c *Connection) Session() *gocql.Session {
	return c.session
}

// Close closes the session. Managers derived via WithKeyspace share this
// connection, so only the owner should call Close.
func (c *Connection) Close() {
	if c.session != nil {
		c.session.Close()
	}
}

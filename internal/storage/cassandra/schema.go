package cassandra

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// The schema is kept as templates so the keyspace and replication factor can
// be configured per deployment (and per test run). Every table name carries
// the {{.Keyspace}} prefix; nothing in this package ever issues USE.

const keyspaceTemplate = `
CREATE KEYSPACE IF NOT EXISTS {{.Keyspace}}
WITH REPLICATION = { 'class': 'SimpleStrategy', 'replication_factor': {{.ReplicationFactor}} }`

// tenantSchemaTemplate holds every per-tenant table. crawl_queue rows are
// identified by (priority, scheduled_at, url); retries insert new rows rather
// than updating old ones. crawl_stats is a counter table partitioned by date
// so one day's totals are a single-partition read.
const tenantSchemaTemplate = `
CREATE TABLE IF NOT EXISTS {{.Keyspace}}.crawl_queue (
	priority int,
	scheduled_at timestamp,
	url text,
	domain text,
	last_attempt_at timestamp,
	attempt_count int,
	created_at timestamp,
	PRIMARY KEY (priority, scheduled_at, url)
);

CREATE TABLE IF NOT EXISTS {{.Keyspace}}.crawled_pages (
	domain text,
	url_path text,
	url text,
	storage_id uuid,
	storage_compression int,
	last_crawled_at timestamp,
	next_crawl_at timestamp,
	crawl_frequency_hours int,
	http_status int,
	content_hash text,
	content_length bigint,
	robots_allowed boolean,
	error_message text,
	crawl_count int,
	created_at timestamp,
	updated_at timestamp,
	PRIMARY KEY (domain, url_path)
);

CREATE TABLE IF NOT EXISTS {{.Keyspace}}.allowed_domains (
	domain text,
	added_by text,
	notes text,
	added_at timestamp,
	PRIMARY KEY (domain)
);

CREATE TABLE IF NOT EXISTS {{.Keyspace}}.crawl_stats (
	date text,
	hour int,
	domain text,
	pages_crawled counter,
	pages_failed counter,
	PRIMARY KEY (date, hour, domain)
);

CREATE TABLE IF NOT EXISTS {{.Keyspace}}.crawl_errors (
	domain text,
	occurred_at timestamp,
	url text,
	error_type text,
	error_message text,
	attempt_count int,
	stack_trace text,
	PRIMARY KEY (domain, occurred_at)
);

CREATE TABLE IF NOT EXISTS {{.Keyspace}}.settings (
	setting_key text,
	setting_value text,
	updated_at timestamp,
	PRIMARY KEY (setting_key)
)`

// systemSchemaTemplate holds the deployment-wide tables: the tenant registry
// plus the user/session tables the session-validation contract reads.
const systemSchemaTemplate = `
CREATE TABLE IF NOT EXISTS {{.Keyspace}}.tenants (
	tenant_id text,
	name text,
	created_at timestamp,
	PRIMARY KEY (tenant_id)
);

CREATE TABLE IF NOT EXISTS {{.Keyspace}}.users (
	user_id uuid,
	email text,
	email_verified boolean,
	status text,
	last_login_at timestamp,
	created_at timestamp,
	updated_at timestamp,
	PRIMARY KEY (user_id)
);

CREATE TABLE IF NOT EXISTS {{.Keyspace}}.sessions (
	session_id_hash text,
	user_id uuid,
	tenant_id text,
	created_at timestamp,
	expires_at timestamp,
	last_active_at timestamp,
	PRIMARY KEY (session_id_hash)
);

CREATE TABLE IF NOT EXISTS {{.Keyspace}}.org_memberships (
	tenant_id text,
	user_id uuid,
	role text,
	joined_at timestamp,
	PRIMARY KEY (tenant_id, user_id)
)`

type schemaParams struct {
	Keyspace          string
	ReplicationFactor int
}

// EnsureTenantSchema creates the keyspace (if missing) and every per-tenant
// table. All statements are IF NOT EXISTS so repeated startup is harmless.
func (c *Connection) EnsureTenantSchema(keyspace string, replicationFactor int) error {
	return c.ensureSchema(tenantSchemaTemplate, keyspace, replicationFactor)
}

// EnsureSystemSchema creates the system keyspace and its tables.
func (c *Connection) EnsureSystemSchema(keyspace string, replicationFactor int) error {
	return c.ensureSchema(systemSchemaTemplate, keyspace, replicationFactor)
}

func (c *Connection) ensureSchema(tableTemplate, keyspace string, replicationFactor int) error {
	if replicationFactor <= 0 {
		replicationFactor = 1
	}
	params := schemaParams{Keyspace: keyspace, ReplicationFactor: replicationFactor}

	keyspaceCQL, err := renderTemplate("keyspace", keyspaceTemplate, params)
	if err != nil {
		return err
	}
	if err := c.session.Query(keyspaceCQL).Exec(); err != nil {
		return fmt.Errorf("failed to create keyspace %s: %w", keyspace, err)
	}

	tablesCQL, err := renderTemplate("tables", tableTemplate, params)
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(tablesCQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := c.session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("failed to create table in %s: %w", keyspace, err)
		}
	}

	c.logger.Debug().Str("keyspace", keyspace).Msg("Schema ensured")
	return nil
}

func renderTemplate(name, text string, params schemaParams) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s schema template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to render %s schema template: %w", name, err)
	}
	return buf.String(), nil
}

package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "dev" or "prod" - controls the crawling_enabled default
	Server      ServerConfig     `toml:"server"`
	Cassandra   CassandraConfig  `toml:"cassandra"`
	Queue       QueueConfig      `toml:"queue"`
	Crawler     CrawlerConfig    `toml:"crawler"`
	Search      SearchConfig     `toml:"search"`
	Storage     StorageConfig    `toml:"storage"`
	Deployment  DeploymentConfig `toml:"deployment"`
	Logging     LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// CassandraConfig holds the cluster contact points and keyspace layout.
// Keyspace is the tenant keyspace used in single-tenant mode. SystemKeyspace
// holds tenants, users and sessions. TenantKeyspaces seeds the tenant
// registry in multi-tenant mode; schedulers are spawned from the registry,
// not from this list directly.
type CassandraConfig struct {
	Hosts           []string `toml:"hosts"`
	Keyspace        string   `toml:"keyspace"`
	SystemKeyspace  string   `toml:"system_keyspace"`
	TenantKeyspaces []string `toml:"tenant_keyspaces"`
}

type QueueConfig struct {
	PollIntervalSecs int `toml:"poll_interval_secs"` // How often schedulers poll an idle queue
}

type CrawlerConfig struct {
	UserAgent      string        `toml:"user_agent"`      // User-agent for robots.txt evaluation and page fetches
	RequestTimeout time.Duration `toml:"request_timeout"` // HTTP request timeout
}

type SearchConfig struct {
	Host   string `toml:"host"`    // Meilisearch host, with or without scheme
	APIKey string `toml:"api_key"` // Optional master key
	Index  string `toml:"index"`   // Index name (default: "documents")
}

// StorageConfig holds S3-compatible object store settings. Endpoint, bucket
// and credentials are all required for the store to be configured; when any
// is missing the agent runs without content storage and every pipeline entry
// fails with a storage error.
type StorageConfig struct {
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	AccessKey       string `toml:"access_key"`
	SecretKey       string `toml:"secret_key"`
	CompressContent bool   `toml:"compress_content"`  // Gzip bodies before upload
	CompressMinSize int    `toml:"compress_min_size"` // Bodies at or below this size are stored uncompressed
}

type DeploymentConfig struct {
	Mode      string `toml:"mode"`       // "single_tenant" or "multi_tenant"
	AgentMode string `toml:"agent_mode"` // "worker", "manager", or "all"
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// NewDefaultConfig creates a configuration with default values.
// Connection endpoints and credentials have no defaults; they come from the
// config file or environment.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "dev", // Default to dev mode - crawling enabled unless a tenant turns it off
		Server: ServerConfig{
			Port: 3000,
			Host: "0.0.0.0",
		},
		Cassandra: CassandraConfig{
			Hosts:          []string{"127.0.0.1:9042"},
			Keyspace:       "lalasearch",
			SystemKeyspace: "lalasearch_system",
		},
		Queue: QueueConfig{
			PollIntervalSecs: 5,
		},
		Crawler: CrawlerConfig{
			UserAgent:      "lala-agent/1.0",
			RequestTimeout: 30 * time.Second,
		},
		Search: SearchConfig{
			Index: "documents",
		},
		Storage: StorageConfig{
			Region:          "us-east-1",
			CompressContent: true,
			CompressMinSize: 1024,
		},
		Deployment: DeploymentConfig{
			Mode:      "single_tenant",
			AgentMode: "all",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files, later files
// overriding earlier ones. Priority: CLI flags > environment variables >
// last config file > ... > first config file > defaults.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Cassandra configuration
	if hosts := os.Getenv("CASSANDRA_HOSTS"); hosts != "" {
		config.Cassandra.Hosts = splitCSV(hosts)
	}
	if keyspace := os.Getenv("CASSANDRA_KEYSPACE"); keyspace != "" {
		config.Cassandra.Keyspace = keyspace
	}
	if systemKeyspace := os.Getenv("CASSANDRA_SYSTEM_KEYSPACE"); systemKeyspace != "" {
		config.Cassandra.SystemKeyspace = systemKeyspace
	}
	if tenantKeyspaces := os.Getenv("TENANT_KEYSPACES"); tenantKeyspaces != "" {
		config.Cassandra.TenantKeyspaces = splitCSV(tenantKeyspaces)
	}

	// Queue configuration
	if pollInterval := os.Getenv("QUEUE_POLL_INTERVAL_SECS"); pollInterval != "" {
		if pi, err := strconv.Atoi(pollInterval); err == nil {
			config.Queue.PollIntervalSecs = pi
		}
	}

	// Crawler configuration
	if userAgent := os.Getenv("USER_AGENT"); userAgent != "" {
		config.Crawler.UserAgent = userAgent
	}
	if requestTimeout := os.Getenv("CRAWLER_REQUEST_TIMEOUT"); requestTimeout != "" {
		if rt, err := time.ParseDuration(requestTimeout); err == nil {
			config.Crawler.RequestTimeout = rt
		}
	}

	// Search configuration
	if host := os.Getenv("MEILISEARCH_HOST"); host != "" {
		config.Search.Host = host
	}
	if apiKey := os.Getenv("MEILISEARCH_API_KEY"); apiKey != "" {
		config.Search.APIKey = apiKey
	}
	if index := os.Getenv("MEILISEARCH_INDEX"); index != "" {
		config.Search.Index = index
	}

	// Storage configuration
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		config.Storage.Region = region
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		config.Storage.AccessKey = accessKey
	}
	if secretKey := os.Getenv("S3_SECRET_KEY"); secretKey != "" {
		config.Storage.SecretKey = secretKey
	}
	if compress := os.Getenv("S3_COMPRESS_CONTENT"); compress != "" {
		if c, err := strconv.ParseBool(compress); err == nil {
			config.Storage.CompressContent = c
		}
	}
	if minSize := os.Getenv("S3_COMPRESS_MIN_SIZE"); minSize != "" {
		if ms, err := strconv.Atoi(minSize); err == nil {
			config.Storage.CompressMinSize = ms
		}
	}

	// Deployment configuration
	if mode := os.Getenv("DEPLOYMENT_MODE"); mode != "" {
		config.Deployment.Mode = mode
	}
	if agentMode := os.Getenv("AGENT_MODE"); agentMode != "" {
		config.Deployment.AgentMode = agentMode
	}

	// Logging configuration
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LOG_OUTPUT"); output != "" {
		if outputs := splitCSV(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks that required settings are present and well-formed.
// The caller treats a validation error as fatal.
func (c *Config) Validate() error {
	if len(c.Cassandra.Hosts) == 0 {
		return fmt.Errorf("CASSANDRA_HOSTS must be set")
	}
	if c.Cassandra.Keyspace == "" {
		return fmt.Errorf("CASSANDRA_KEYSPACE must be set")
	}
	if c.Queue.PollIntervalSecs <= 0 {
		return fmt.Errorf("QUEUE_POLL_INTERVAL_SECS must be a positive number")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("USER_AGENT must be set")
	}

	switch c.Deployment.Mode {
	case "single_tenant", "multi_tenant":
	default:
		return fmt.Errorf("DEPLOYMENT_MODE must be 'single_tenant' or 'multi_tenant', got %q", c.Deployment.Mode)
	}

	if c.Deployment.Mode == "multi_tenant" && c.Cassandra.SystemKeyspace == "" {
		return fmt.Errorf("CASSANDRA_SYSTEM_KEYSPACE must be set in multi_tenant mode")
	}

	return nil
}

// StorageConfigured reports whether all required S3 settings are present.
func (c *Config) StorageConfigured() bool {
	s := c.Storage
	return s.Endpoint != "" && s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

// SearchConfigured reports whether a search host is set.
func (c *Config) SearchConfigured() bool {
	return c.Search.Host != ""
}

// PollInterval returns the queue poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Queue.PollIntervalSecs) * time.Second
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// CrawlingEnabledDefault returns the crawling_enabled fallback used when a
// tenant has no stored setting: enabled in dev, disabled in prod.
func (c *Config) CrawlingEnabledDefault() bool {
	return !c.IsProduction()
}

func splitCSV(s string) []string {
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

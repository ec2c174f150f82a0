// Package config provides centralized configuration management for the
// pipeline. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Store    StoreConfig
	Notify   NotifyConfig
	Fetch    FetchConfig
	Filter   FilterConfig
	Pipeline PipelineConfig
	Replica  ReplicaConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

// StoreConfig holds object store settings.
type StoreConfig struct {
	// Bucket is the bucket holding raw exports and snapshots (required)
	Bucket string `env:"STORE_BUCKET" required:"true"`

	// Region is the AWS region of the bucket (default: eu-central-1)
	Region string `env:"STORE_REGION" default:"eu-central-1"`

	// Timeout is the per-call deadline for store operations (default: 30s)
	Timeout time.Duration `env:"STORE_TIMEOUT" default:"30s"`
}

// NotifyConfig holds operational warning delivery settings.
type NotifyConfig struct {
	// TopicARN is the SNS topic for warnings; empty means log-only
	TopicARN string `env:"NOTIFY_TOPIC_ARN"`

	// Region is the AWS region of the topic (default: eu-west-1)
	Region string `env:"NOTIFY_REGION" default:"eu-west-1"`
}

// FetchConfig holds raw export download settings.
type FetchConfig struct {
	// ExportURL is the date-templated export URL; {date} is replaced
	// with the run date as yyyy-mm-dd. Required only by the fetch command.
	ExportURL string `env:"AUCTION_EXPORT_URL"`

	// MinBytes is the minimum plausible export size; smaller responses
	// are treated as a broken export (default: 100000)
	MinBytes int64 `env:"FETCH_MIN_BYTES" default:"100000"`

	// Timeout is the HTTP deadline for the download (default: 2m)
	Timeout time.Duration `env:"FETCH_TIMEOUT" default:"2m"`
}

// FilterConfig holds the exclusion blacklists.
type FilterConfig struct {
	// Domains is a comma-separated list of excluded email domains
	Domains []string `env:"FILTER_DOMAINS"`

	// Emails is a comma-separated list of excluded full addresses
	Emails []string `env:"FILTER_EMAILS"`
}

// PipelineConfig holds run-level processing settings.
type PipelineConfig struct {
	// CleanWorkers is the bounded parallelism of the field cleaner
	// (default: 4)
	CleanWorkers int `env:"PIPELINE_CLEAN_WORKERS" default:"4"`

	// Interval is the cadence of scheduled runs in serve mode;
	// 0s disables the background scheduler (default: 0s)
	Interval time.Duration `env:"PIPELINE_INTERVAL" default:"0s"`
}

// ReplicaConfig holds the relational replication target.
type ReplicaConfig struct {
	// DSN is the MySQL DSN of the replica database; empty disables
	// replication. Required only by the replicate command.
	DSN string `env:"REPLICA_MYSQL_DSN"`

	// Table is the replica table name (default: auctions_raw)
	Table string `env:"REPLICA_TABLE" default:"auctions_raw"`
}

// ServerConfig holds HTTP server settings for the snapshot read surface.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// APIKeys is a comma-separated list of keys accepted on the run
	// trigger endpoint; empty leaves the trigger open
	APIKeys []string `env:"SERVER_API_KEYS"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// forwarding headers are trusted for client IP extraction
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}

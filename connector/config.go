package connector

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid connection config")

// Config represents database connection configuration.
type Config struct {
	// Driver names a registered provider: "postgres" or "sqlite3".
	Driver   string            `json:"driver" yaml:"driver"`
	Host     string            `json:"host" yaml:"host"`
	Port     int               `json:"port" yaml:"port"`
	Database string            `json:"database" yaml:"database"`
	Username string            `json:"username" yaml:"username"`
	Password string            `json:"password" yaml:"password"`
	SSLMode  string            `json:"ssl_mode" yaml:"ssl_mode"`
	Params   map[string]string `json:"params" yaml:"params"`

	// Path is the database file of file-based drivers. Empty means in-memory.
	Path string `json:"path" yaml:"path"`

	Pool           PoolConfig    `json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout   time.Duration `json:"query_timeout" yaml:"query_timeout"`

	// StatementCache is the prepared statement cache size of database/sql
	// based drivers. Zero disables it.
	StatementCache int          `json:"statement_cache" yaml:"statement_cache"`
	Retry          *RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `json:"max_open" yaml:"max_open"`
	MaxIdle     int           `json:"max_idle" yaml:"max_idle"`
	MaxLifetime time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
	MaxIdleTime time.Duration `json:"max_idle_time" yaml:"max_idle_time"`
}

// RetryConfig defines connection retry behavior.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay"`

	// Backoff multiplies the delay after every failed attempt. Defaults to 2.
	Backoff float64 `json:"backoff" yaml:"backoff"`
}

// LoadConfig reads a YAML connection config from path and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("connector: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML connection config and validates it.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("connector: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields the configured driver needs.
func (c Config) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("connector: driver is required: %w", ErrInvalidConfig)
	}
	if c.Driver != "sqlite3" {
		if c.Host == "" {
			return fmt.Errorf("connector: host is required for %s: %w", c.Driver, ErrInvalidConfig)
		}
		if c.Port < 0 || c.Port > 65535 {
			return fmt.Errorf("connector: invalid port %d: %w", c.Port, ErrInvalidConfig)
		}
	}
	if c.Pool.MaxOpen < 0 || c.Pool.MaxIdle < 0 {
		return fmt.Errorf("connector: negative pool size: %w", ErrInvalidConfig)
	}
	if c.ConnectTimeout < 0 || c.QueryTimeout < 0 {
		return fmt.Errorf("connector: negative timeout: %w", ErrInvalidConfig)
	}
	if c.StatementCache < 0 {
		return fmt.Errorf("connector: negative statement cache size: %w", ErrInvalidConfig)
	}
	if r := c.Retry; r != nil {
		if r.MaxRetries < 0 || r.BaseDelay < 0 || r.MaxDelay < 0 {
			return fmt.Errorf("connector: negative retry setting: %w", ErrInvalidConfig)
		}
		if r.Backoff != 0 && r.Backoff < 1 {
			return fmt.Errorf("connector: retry backoff %v below 1: %w", r.Backoff, ErrInvalidConfig)
		}
	}
	return nil
}

// WithPoolDefaults fills unset pool settings.
func (c Config) WithPoolDefaults() Config {
	if c.Pool.MaxOpen <= 0 {
		c.Pool.MaxOpen = 10
	}
	if c.Pool.MaxIdle == 0 {
		c.Pool.MaxIdle = 2
	}
	if c.Pool.MaxLifetime == 0 {
		c.Pool.MaxLifetime = time.Hour
	}
	if c.Pool.MaxIdleTime == 0 {
		c.Pool.MaxIdleTime = 30 * time.Minute
	}
	return c
}

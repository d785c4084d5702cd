package connector

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DSNBuilder provides a fluent interface for building database connection strings
type DSNBuilder struct {
	scheme   string
	username string
	password string
	host     string
	port     int
	database string
	params   map[string]string
}

// NewDSNBuilder creates a new DSN builder
func NewDSNBuilder(scheme string) *DSNBuilder {
	return &DSNBuilder{
		scheme: scheme,
		params: make(map[string]string),
	}
}

// Auth sets username and password
func (b *DSNBuilder) Auth(username, password string) *DSNBuilder {
	b.username = username
	b.password = password
	return b
}

// Host sets the host and port
func (b *DSNBuilder) Host(host string, port int) *DSNBuilder {
	b.host = host
	b.port = port
	return b
}

// Database sets the database name
func (b *DSNBuilder) Database(name string) *DSNBuilder {
	b.database = name
	return b
}

// Param adds a single parameter
func (b *DSNBuilder) Param(key, value string) *DSNBuilder {
	if value != "" {
		b.params[key] = value
	}
	return b
}

// Params adds multiple parameters
func (b *DSNBuilder) Params(params map[string]string) *DSNBuilder {
	for k, v := range params {
		if v != "" {
			b.params[k] = v
		}
	}
	return b
}

// WithPostgresDefaults sets sslmode and connect_timeout unless already set.
func (b *DSNBuilder) WithPostgresDefaults() *DSNBuilder {
	if _, ok := b.params["sslmode"]; !ok {
		b.Param("sslmode", "prefer")
	}
	if _, ok := b.params["connect_timeout"]; !ok {
		b.Param("connect_timeout", "10")
	}
	return b
}

func (b *DSNBuilder) Validate() error {
	if b.host == "" {
		return fmt.Errorf("connector: host is required: %w", ErrInvalidConfig)
	}
	if b.port <= 0 || b.port > 65535 {
		return fmt.Errorf("connector: invalid port %d: %w", b.port, ErrInvalidConfig)
	}
	return nil
}

// Build constructs the final DSN string
func (b *DSNBuilder) Build() string {
	var dsn strings.Builder

	// Scheme
	dsn.WriteString(b.scheme)
	dsn.WriteString("://")

	// Authentication
	if b.username != "" {
		dsn.WriteString(url.QueryEscape(b.username))
		if b.password != "" {
			dsn.WriteString(":")
			dsn.WriteString(url.QueryEscape(b.password))
		}
		dsn.WriteString("@")
	}

	// Host and port
	dsn.WriteString(b.host)
	if b.port > 0 {
		dsn.WriteString(":")
		dsn.WriteString(strconv.Itoa(b.port))
	}

	// Database
	if b.database != "" {
		dsn.WriteString("/")
		dsn.WriteString(url.PathEscape(b.database))
	}

	// Parameters, sorted by key
	writeParams(&dsn, b.params)

	return dsn.String()
}

func writeParams(dsn *strings.Builder, params map[string]string) {
	if len(params) == 0 {
		return
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dsn.WriteString("?")
	for i, key := range keys {
		if i > 0 {
			dsn.WriteString("&")
		}
		dsn.WriteString(url.QueryEscape(key))
		dsn.WriteString("=")
		dsn.WriteString(url.QueryEscape(params[key]))
	}
}

// FileDSN renders a file: URI for file-based drivers such as SQLite. An
// empty path opens a private in-memory database.
func FileDSN(path string, params map[string]string) string {
	var dsn strings.Builder
	if path == "" {
		path = ":memory:"
	}
	dsn.WriteString("file:")
	dsn.WriteString(path)

	clean := make(map[string]string, len(params))
	for k, v := range params {
		if v != "" {
			clean[k] = v
		}
	}
	writeParams(&dsn, clean)
	return dsn.String()
}

// PostgresDSN renders cfg as a postgres:// URL.
func PostgresDSN(cfg Config) (string, error) {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	b := NewDSNBuilder("postgres").
		Auth(cfg.Username, cfg.Password).
		Host(cfg.Host, port).
		Database(cfg.Database).
		Param("sslmode", cfg.SSLMode).
		Params(cfg.Params).
		WithPostgresDefaults()
	if err := b.Validate(); err != nil {
		return "", err
	}
	return b.Build(), nil
}

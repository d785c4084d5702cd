package connector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Konsultn-Engineering/sqlib/database"
)

var globalManager = &Manager{
	providers: make(map[string]Provider),
}

// Manager maps driver names to providers.
type Manager struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// Register makes provider available under name, replacing any earlier one.
func Register(name string, provider Provider) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.providers[name] = provider
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	names := make([]string, 0, len(globalManager.providers))
	for name := range globalManager.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Provider, error) {
	globalManager.mu.RLock()
	provider, ok := globalManager.providers[name]
	globalManager.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("connector: provider %q not registered (have %v)", name, Drivers())
	}
	return provider, nil
}

// Option configures a Connector.
type Option func(*standardConnector)

// WithLogger logs retries to l and hands it to the opened database.
func WithLogger(l *slog.Logger) Option {
	return func(c *standardConnector) {
		c.logger = l
		c.dbOpts = append(c.dbOpts, database.WithLogger(l))
	}
}

// WithDatabaseOptions passes opts to the opened database.
func WithDatabaseOptions(opts ...database.Option) Option {
	return func(c *standardConnector) { c.dbOpts = append(c.dbOpts, opts...) }
}

type standardConnector struct {
	provider Provider
	config   Config
	logger   *slog.Logger
	dbOpts   []database.Option
}

// New validates cfg and returns a connector for its driver.
func New(cfg Config, opts ...Option) (Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	provider, err := lookup(cfg.Driver)
	if err != nil {
		return nil, err
	}
	c := &standardConnector{provider: provider, config: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Open is New followed by Connect.
func Open(ctx context.Context, cfg Config, opts ...Option) (Connection, error) {
	c, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return c.Connect(ctx)
}

// Connect opens a connection, retrying per the config's Retry settings.
// ConnectTimeout bounds the whole attempt, retries included.
func (c *standardConnector) Connect(ctx context.Context) (Connection, error) {
	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	opts := c.dbOpts
	if c.config.QueryTimeout > 0 {
		opts = append(opts[:len(opts):len(opts)], database.WithQueryTimeout(c.config.QueryTimeout))
	}
	if c.config.StatementCache > 0 {
		opts = append(opts[:len(opts):len(opts)], database.WithStatementCache(c.config.StatementCache))
	}

	connect := func(ctx context.Context) (Connection, error) {
		return c.provider.Connect(ctx, c.config, opts...)
	}
	if c.config.Retry == nil {
		return connect(ctx)
	}

	conn, err := retryConnect(ctx, *c.config.Retry, c.logger, connect)
	if err != nil {
		return nil, fmt.Errorf("connector: failed to connect after %d retries: %w", c.config.Retry.MaxRetries, err)
	}
	return conn, nil
}

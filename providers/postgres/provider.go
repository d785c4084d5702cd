// Package postgres registers the "postgres" connector provider, backed by a
// pgx connection pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/Konsultn-Engineering/sqlib/connector"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/dialect"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Provider struct{}

func init() {
	connector.Register("postgres", &Provider{})
}

// PoolConfig translates cfg into a pgxpool configuration, applying pool
// defaults.
func (p *Provider) PoolConfig(cfg connector.Config) (*pgxpool.Config, error) {
	dsn, err := connector.PostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	cfg = cfg.WithPoolDefaults()

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	poolCfg.MinConns = int32(min(cfg.Pool.MaxIdle, cfg.Pool.MaxOpen))
	poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime
	return poolCfg, nil
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config, opts ...database.Option) (connector.Connection, error) {
	poolCfg, err := p.PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &connection{pool: pool, db: database.NewPgxDatabase(pool, opts...)}, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

type connection struct {
	pool *pgxpool.Pool
	db   *database.PgxDatabase
}

func (c *connection) Database() database.Database {
	return c.db
}

func (c *connection) Dialect() dialect.Dialect {
	return c.db.Dialect()
}

func (c *connection) Health(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	s := c.pool.Stat()
	return connector.ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}

func (c *connection) Close() error {
	return c.db.Close()
}

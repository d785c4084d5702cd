// Package sqlite registers the "sqlite3" connector provider, backed by
// database/sql and github.com/mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Konsultn-Engineering/sqlib/connector"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/dialect"
	_ "github.com/mattn/go-sqlite3"
)

type Provider struct{}

func init() {
	connector.Register("sqlite3", &Provider{})
}

// DSN renders cfg as a go-sqlite3 file URI. Foreign keys are enforced
// unless cfg.Params says otherwise.
func (p *Provider) DSN(cfg connector.Config) string {
	params := map[string]string{"_foreign_keys": "on"}
	for k, v := range cfg.Params {
		params[k] = v
	}
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	return connector.FileDSN(path, params)
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config, opts ...database.Option) (connector.Connection, error) {
	db, err := sql.Open("sqlite3", p.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if inMemory(cfg) {
		// Each connection to a private in-memory database sees its own copy.
		db.SetMaxOpenConns(1)
	} else {
		cfg = cfg.WithPoolDefaults()
		db.SetMaxOpenConns(cfg.Pool.MaxOpen)
		db.SetMaxIdleConns(cfg.Pool.MaxIdle)
		db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
		db.SetConnMaxIdleTime(cfg.Pool.MaxIdleTime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &connection{db: database.NewSqlDatabase(db, p.Dialect(), opts...)}, nil
}

func inMemory(cfg connector.Config) bool {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	return path == "" || path == ":memory:"
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewSQLiteDialect()
}

type connection struct {
	db *database.SqlDatabase
}

func (c *connection) Database() database.Database {
	return c.db
}

func (c *connection) Dialect() dialect.Dialect {
	return c.db.Dialect()
}

func (c *connection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	return connector.StatsFromDB(c.db.DB().Stats())
}

func (c *connection) Close() error {
	return c.db.Close()
}

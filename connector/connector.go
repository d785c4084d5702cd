// Package connector opens database.Database handles from configuration.
// Drivers register a Provider, usually from an init function:
//
//	import _ "github.com/Konsultn-Engineering/sqlib/providers/postgres"
//
//	conn, err := connector.Open(ctx, cfg)
//	db := conn.Database()
package connector

import (
	"context"

	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/dialect"
)

// Connection is an open, pooled connection to one database.
type Connection interface {
	Database() database.Database
	Dialect() dialect.Dialect
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

// Connector opens connections for one configuration.
type Connector interface {
	Connect(ctx context.Context) (Connection, error)
}

// Provider opens connections for one driver.
type Provider interface {
	Connect(ctx context.Context, cfg Config, opts ...database.Option) (Connection, error)
	Dialect() dialect.Dialect
}

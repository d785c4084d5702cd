// Package sqlib opens a database from configuration with every bundled
// driver registered. Statements are then built with the query package or
// mapped from structs with the model package.
package sqlib

import (
	"context"

	"github.com/Konsultn-Engineering/sqlib/connector"
	_ "github.com/Konsultn-Engineering/sqlib/providers/postgres"
	_ "github.com/Konsultn-Engineering/sqlib/providers/sqlite"
)

type (
	Config     = connector.Config
	Connection = connector.Connection
)

// Connect opens a connection for cfg.Driver.
func Connect(ctx context.Context, cfg Config, opts ...connector.Option) (Connection, error) {
	return connector.Open(ctx, cfg, opts...)
}

// ConnectFile loads a YAML config from path and connects with it.
func ConnectFile(ctx context.Context, path string, opts ...connector.Option) (Connection, error) {
	cfg, err := connector.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return Connect(ctx, cfg, opts...)
}

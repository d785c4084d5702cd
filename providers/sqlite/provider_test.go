package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Konsultn-Engineering/sqlib/connector"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_DSN(t *testing.T) {
	p := &Provider{}

	assert.Equal(t, "file::memory:?_foreign_keys=on", p.DSN(connector.Config{Driver: "sqlite3"}))
	assert.Equal(t, "file:app.db?_foreign_keys=off&cache=shared",
		p.DSN(connector.Config{Path: "app.db", Params: map[string]string{"cache": "shared", "_foreign_keys": "off"}}))
}

func TestOpen_InMemory(t *testing.T) {
	ctx := context.Background()

	conn, err := connector.Open(ctx, connector.Config{Driver: "sqlite3", StatementCache: 8})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.Health(ctx))
	assert.Equal(t, "sqlite3", conn.Dialect().Name())

	db := conn.Database()
	_, err = db.ExecuteUpdate(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v INTEGER)`, nil)
	require.NoError(t, err)

	p := database.NewParameters()
	p.Bind("answer")
	p.Bind(42)
	_, err = db.ExecuteUpdate(ctx, `INSERT INTO kv (k, v) VALUES (@val1, @val2)`, p)
	require.NoError(t, err)

	rm, err := db.ExecuteQuery(ctx, `SELECT v FROM kv`, nil)
	require.NoError(t, err)
	row, ok := rm.First()
	require.True(t, ok)
	v, err := row.Int64("V")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	assert.Equal(t, 1, conn.Stats().OpenConnections)
}

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := connector.Open(ctx, connector.Config{Driver: "sqlite3", Path: path})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Database().ExecuteUpdate(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY)`, nil)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

package postgres

import (
	"testing"
	"time"

	"github.com/Konsultn-Engineering/sqlib/connector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_PoolConfig(t *testing.T) {
	p := &Provider{}

	cfg, err := p.PoolConfig(connector.Config{
		Driver:   "postgres",
		Host:     "db.internal",
		Port:     6432,
		Database: "game",
		Username: "app",
		Password: "secret",
		SSLMode:  "disable",
		Pool:     connector.PoolConfig{MaxOpen: 4, MaxIdle: 8, MaxLifetime: time.Minute},
	})
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.ConnConfig.Host)
	assert.Equal(t, uint16(6432), cfg.ConnConfig.Port)
	assert.Equal(t, "game", cfg.ConnConfig.Database)
	assert.Equal(t, "app", cfg.ConnConfig.User)
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, int32(4), cfg.MinConns)
	assert.Equal(t, time.Minute, cfg.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, cfg.MaxConnIdleTime)
	assert.Equal(t, 10*time.Second, cfg.ConnConfig.ConnectTimeout)
}

func TestProvider_PoolConfigRequiresHost(t *testing.T) {
	_, err := (&Provider{}).PoolConfig(connector.Config{Driver: "postgres"})
	assert.ErrorIs(t, err, connector.ErrInvalidConfig)
}

func TestProvider_Registered(t *testing.T) {
	assert.Contains(t, connector.Drivers(), "postgres")
	assert.Equal(t, "postgres", (&Provider{}).Dialect().Name())
}

package postgres

import (
	"context"
	"testing"
	"time"

	"concoro/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	pcfg, err := PoolConfig(config.DatabaseConfig{
		DBHost:       "db.internal",
		DBPort:       "6543",
		DBName:       "concoro",
		DBUser:       "concoro_app",
		DBPassword:   "p@ss word/with#chars",
		PoolMaxConns: 12,
		PoolMinConns: 2,

		ConnectTimeout: 3 * time.Second,
	})
	require.NoError(t, err)

	cc := pcfg.ConnConfig
	assert.Equal(t, "db.internal", cc.Host)
	assert.Equal(t, uint16(6543), cc.Port)
	assert.Equal(t, "concoro", cc.Database)
	assert.Equal(t, "concoro_app", cc.User)
	assert.Equal(t, "p@ss word/with#chars", cc.Password)
	assert.Equal(t, 3*time.Second, cc.ConnectTimeout)
	assert.Equal(t, "concoro", cc.RuntimeParams["application_name"])
	assert.Equal(t, "UTC", cc.RuntimeParams["timezone"])
	assert.Equal(t, int32(12), pcfg.MaxConns)
	assert.Equal(t, int32(2), pcfg.MinConns)
}

func TestNilPool(t *testing.T) {
	var p *Pool
	ctx := context.Background()

	assert.ErrorIs(t, p.Ping(ctx), errNilPool)
	_, err := p.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, errNilPool)
	var n int
	assert.ErrorIs(t, p.QueryRow(ctx, "SELECT 1").Scan(&n), errNilPool)
	assert.NoError(t, p.Close())
}

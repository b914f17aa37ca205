package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocontrol/agrocontrol-api/pkg/config"
)

func TestPoolConfigFrom(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db", Port: 5432, User: "agro", Password: "secreto", DBName: "agrocontrol", SSLMode: "disable",
		MaxConns: 10, MinConns: 1,
	}

	pc, err := poolConfigFrom(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(10), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, "agrocontrol", pc.ConnConfig.Database)
	assert.NotNil(t, pc.ConnConfig.Tracer)
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfigFrom_DSNInvalido(t *testing.T) {
	_, err := poolConfigFrom(config.DBConfig{DatabaseURL: "postgres://%zz", MaxConns: 1})
	assert.Error(t, err)
}

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "portfolio")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("ADMIN_USERNAME", "mickey")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "data", cfg.Store.Dir)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessExpiresIn)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiresIn)
	assert.Equal(t, time.Duration(0), cfg.Sync.Interval)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMissingRequiredEnv))
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD_HASH")
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("SYNC_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errInvalidEnv))
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "SYNC_INTERVAL")
}

func TestLoad_PostgresNeedsConnection(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL|DB_HOST")

	t.Setenv("DATABASE_URL", "postgres://localhost/portfolio")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
}

func TestLoadStore_OnlyEnforcesStoreSettings(t *testing.T) {
	for _, key := range []string{"APP_NAME", "APP_ENV", "HTTP_PORT", "JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET", "ADMIN_USERNAME", "ADMIN_PASSWORD_HASH", "ADMIN_PASSWORD", "DATABASE_URL", "DB_HOST"} {
		t.Setenv(key, "")
	}
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/portfolio.db")

	cfg, err := LoadStore()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/portfolio.db", cfg.Store.SQLitePath)

	t.Setenv("STORE_DRIVER", "postgres")
	_, err = LoadStore()
	assert.ErrorIs(t, err, errMissingRequiredEnv)
}

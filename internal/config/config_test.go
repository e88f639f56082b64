package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_DRIVER", "APP_PORT", "AUTH_SESSION_SECRET", "REDIS_ADDR", "ADMIN_USERNAME", "ADMIN_PASSWORD", "AUTH_SESSION_TTL_MINUTES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:5000", cfg.App.Addr())
	assert.Len(t, cfg.Auth.SessionSecret, sessionSecretBytes)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "admin123", cfg.Admin.Password)
}

func TestLoadRandomSecretDiffersPerLoad(t *testing.T) {
	t.Setenv("AUTH_SESSION_SECRET", "")

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)

	assert.NotEqual(t, first.Auth.SessionSecret, second.Auth.SessionSecret)
}

func TestLoadFromEnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set, even to "".
	for _, key := range []string{"APP_PORT", "AUTH_SESSION_SECRET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=8088\nAUTH_SESSION_SECRET=from-file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8088", cfg.App.Port)
	assert.Equal(t, []byte("from-file"), cfg.Auth.SessionSecret)
}

func TestLoadRejectsBadDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("STORE_DSN", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_DSN", "postgres://localhost/helpdesk")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
}

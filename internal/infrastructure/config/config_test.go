package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs Load from an empty directory so no config.toml is picked up
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "erp-backoffice", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
		assert.Equal(t, CacheMemory, cfg.Cache.Backend)
		assert.Equal(t, 5*time.Minute, cfg.Cache.SnapshotTTL)
		assert.Equal(t, 13, cfg.Numbering.Length)
		assert.Equal(t, 100, cfg.Log.MaxSizeMB)
		assert.False(t, cfg.Settings.SeedDefaults)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.True(t, cfg.Telemetry.Insecure)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Equal(t, time.Minute, cfg.Telemetry.MetricsInterval)
	})

	t.Run("loads values from environment variables with ERP prefix", func(t *testing.T) {
		isolate(t)
		t.Setenv("ERP_APP_PORT", "9000")
		t.Setenv("ERP_DATABASE_DRIVER", "SQLite")
		t.Setenv("ERP_DATABASE_SQLITE_PATH", "/tmp/settings.db")
		t.Setenv("ERP_CACHE_BACKEND", "redis")
		t.Setenv("ERP_CACHE_SNAPSHOT_TTL", "30s")
		t.Setenv("ERP_NUMBERING_LENGTH", "15")
		t.Setenv("ERP_SETTINGS_SEED_DEFAULTS", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "/tmp/settings.db", cfg.Database.SQLitePath)
		assert.Equal(t, CacheRedis, cfg.Cache.Backend)
		assert.Equal(t, 30*time.Second, cfg.Cache.SnapshotTTL)
		assert.Equal(t, 15, cfg.Numbering.Length)
		assert.True(t, cfg.Settings.SeedDefaults)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		isolate(t)
		t.Setenv("ERP_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects short document numbers", func(t *testing.T) {
		isolate(t)
		t.Setenv("ERP_NUMBERING_LENGTH", "9")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "numbering.length")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		isolate(t)
		t.Setenv("ERP_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("ERP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		isolate(t)
		t.Setenv("ERP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.sampling_ratio")
	})

	t.Run("production requires database password", func(t *testing.T) {
		isolate(t)
		t.Setenv("ERP_APP_ENV", "production")
		t.Setenv("ERP_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
name = "acme-backoffice"

[database]
driver = "mongo"

[mongo]
uri = "mongodb://mongo:27017"
database = "acme"

[log]
level = "debug"
output = "/var/log/backoffice.log"
max_size_mb = 10
compress = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "acme-backoffice", cfg.App.Name)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
	assert.Equal(t, "acme", cfg.Mongo.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.True(t, cfg.Log.Compress)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "erp", Password: "p@ss word", DBName: "erp", SSLMode: "require"}
	assert.Equal(t, "postgres://erp:p%40ss%20word@db:5432/erp?sslmode=require", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}

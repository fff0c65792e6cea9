package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetPrefixed clears RENTLEDGER_ variables inherited from the environment;
// t.Setenv restores them when the test ends.
func unsetPrefixed(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

var envKeys = []string{
	"RENTLEDGER_APP_NAME",
	"RENTLEDGER_APP_ENV",
	"RENTLEDGER_APP_PORT",
	"RENTLEDGER_DATABASE_DRIVER",
	"RENTLEDGER_DATABASE_HOST",
	"RENTLEDGER_DATABASE_PORT",
	"RENTLEDGER_DATABASE_PASSWORD",
	"RENTLEDGER_DATABASE_SSLMODE",
	"RENTLEDGER_DATABASE_MAX_OPEN_CONNS",
	"RENTLEDGER_DATABASE_MAX_IDLE_CONNS",
	"RENTLEDGER_BILLING_AUTO_ISSUE_INVOICES",
	"RENTLEDGER_BILLING_INVOICE_PREFIX",
	"RENTLEDGER_IDEMPOTENCY_BACKEND",
	"RENTLEDGER_SCHEDULER_ENABLED",
	"RENTLEDGER_SCHEDULER_OVERDUE_INTERVAL",
	"RENTLEDGER_STORAGE_ENABLED",
	"RENTLEDGER_STORAGE_BUCKET",
	"RENTLEDGER_SWAGGER_ENABLED",
	"RENTLEDGER_SWAGGER_ALLOWED_IPS",
	"RENTLEDGER_TELEMETRY_SAMPLING_RATIO",
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		unsetPrefixed(t, envKeys...)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "rentledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "rentledger", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Billing.AutoIssueInvoices)
		assert.Equal(t, "INV", cfg.Billing.InvoicePrefix)
		assert.Equal(t, "memory", cfg.Idempotency.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, time.Hour, cfg.Scheduler.OverdueInterval)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiration)
	})

	t.Run("loads values from environment variables with RENTLEDGER prefix", func(t *testing.T) {
		unsetPrefixed(t, envKeys...)
		t.Setenv("RENTLEDGER_APP_NAME", "test-app")
		t.Setenv("RENTLEDGER_APP_PORT", "9000")
		t.Setenv("RENTLEDGER_DATABASE_HOST", "testdb.local")
		t.Setenv("RENTLEDGER_DATABASE_PORT", "5433")
		t.Setenv("RENTLEDGER_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("RENTLEDGER_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("RENTLEDGER_BILLING_AUTO_ISSUE_INVOICES", "false")
		t.Setenv("RENTLEDGER_BILLING_INVOICE_PREFIX", "RCP")
		t.Setenv("RENTLEDGER_IDEMPOTENCY_BACKEND", "redis")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Billing.AutoIssueInvoices)
		assert.Equal(t, "RCP", cfg.Billing.InvoicePrefix)
		assert.Equal(t, "redis", cfg.Idempotency.Backend)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		unsetPrefixed(t, envKeys...)
		t.Setenv("RENTLEDGER_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("RENTLEDGER_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		unsetPrefixed(t, envKeys...)
		t.Setenv("RENTLEDGER_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects unknown idempotency backend", func(t *testing.T) {
		unsetPrefixed(t, envKeys...)
		t.Setenv("RENTLEDGER_IDEMPOTENCY_BACKEND", "memcached")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idempotency.backend")
	})

	t.Run("requires bucket when storage enabled", func(t *testing.T) {
		unsetPrefixed(t, envKeys...)
		t.Setenv("RENTLEDGER_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("rejects sub-minute overdue interval", func(t *testing.T) {
		unsetPrefixed(t, envKeys...)
		t.Setenv("RENTLEDGER_SCHEDULER_ENABLED", "true")
		t.Setenv("RENTLEDGER_SCHEDULER_OVERDUE_INTERVAL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overdue_interval")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		unsetPrefixed(t, envKeys...)
		t.Setenv("RENTLEDGER_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ConfigFile(t *testing.T) {
	unsetPrefixed(t, envKeys...)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[database]
driver = "sqlite"
sqlite_path = ":memory:"

[http]
request_timeout = "5s"
cors_allow_origins = ["https://landlord.example"]

[billing]
invoice_prefix = "RL"
`), 0o600))
	t.Chdir(dir)
	t.Setenv("RENTLEDGER_BILLING_INVOICE_PREFIX", "ENV")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, []string{"https://landlord.example"}, cfg.HTTP.CORSAllowOrigins)
	// environment wins over the file
	assert.Equal(t, "ENV", cfg.Billing.InvoicePrefix)
	// untouched keys keep their defaults
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "KES", cfg.Billing.Currency)
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		unsetPrefixed(t, envKeys...)
		t.Setenv("RENTLEDGER_APP_ENV", "production")
		t.Setenv("RENTLEDGER_DATABASE_PASSWORD", "secure-password")
		t.Setenv("RENTLEDGER_DATABASE_SSLMODE", "require")
		t.Setenv("RENTLEDGER_SWAGGER_ENABLED", "false")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("RENTLEDGER_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("RENTLEDGER_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("refuses sqlite in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("RENTLEDGER_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be postgres in production")
	})

	t.Run("fails if swagger enabled without IP restriction in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("RENTLEDGER_SWAGGER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled or have IP restriction")
	})

	t.Run("passes with swagger restricted by IP in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("RENTLEDGER_SWAGGER_ENABLED", "true")
		t.Setenv("RENTLEDGER_SWAGGER_ALLOWED_IPS", "10.0.0.1")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.Enabled)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_RedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
}

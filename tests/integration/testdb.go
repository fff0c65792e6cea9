// Package integration runs the ledger against real PostgreSQL and Redis
// containers started with testcontainers. Run with go test without -short.
package integration

import (
	"context"
	"database/sql"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	"github.com/rentledger/backend/internal/infrastructure/migration"
	"github.com/rentledger/backend/internal/infrastructure/persistence"
	"github.com/rentledger/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

// postgresServer is started once per test binary and migrated on start
var postgresServer struct {
	sync.Mutex
	container testcontainers.Container
	cfg       config.DatabaseConfig
}

// TestDB is a connection to the shared, migrated ledger database
type TestDB struct {
	*persistence.Database
	t *testing.T
}

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker; skipped with -short")
	}
}

// NewSharedTestDB connects to the package's PostgreSQL container, starting
// and migrating it on first use. Every table is truncated when the test ends.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipShort(t)

	cfg := startPostgres(t)
	var gl gormlogger.Interface
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gl = logger.NewGormLogger(zaptest.NewLogger(t), gormlogger.Info)
	}
	db, err := persistence.Open(context.Background(), &cfg, gl)
	require.NoError(t, err, "connect to ledger database")

	tdb := &TestDB{Database: db, t: t}
	t.Cleanup(func() {
		tdb.CleanTables()
		_ = db.Close()
	})
	return tdb
}

func startPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	postgresServer.Lock()
	defer postgresServer.Unlock()
	if postgresServer.container != nil {
		return postgresServer.cfg
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("rentledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(endpoint)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:          "postgres",
		Host:            host,
		Port:            port,
		User:            "postgres",
		Password:        "postgres",
		DBName:          "rentledger_test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 5,
	}

	sqlDB, err := sql.Open("postgres", cfg.DSN())
	require.NoError(t, err)
	defer sqlDB.Close()
	m, err := migration.NewEmbedded(sqlDB, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(ctx), "apply migrations")

	postgresServer.container, postgresServer.cfg = container, cfg
	return cfg
}

// CleanTables truncates every ledger table in one statement
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	var tables []string
	err := tdb.DB.Raw(`SELECT quote_ident(tablename) FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`).Scan(&tables).Error
	require.NoError(tdb.t, err, "list tables")
	if len(tables) == 0 {
		return
	}
	if err := tdb.DB.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " CASCADE").Error; err != nil {
		tdb.t.Logf("truncate failed: %v", err)
	}
}

// NewRedisAddr starts a throwaway Redis container and returns host:port
func NewRedisAddr(t *testing.T) string {
	t.Helper()
	skipShort(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate redis container: %v", err)
		}
	})

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return addr
}

// CleanupSharedContainer stops the shared PostgreSQL container
func CleanupSharedContainer() {
	postgresServer.Lock()
	defer postgresServer.Unlock()
	if postgresServer.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = postgresServer.container.Terminate(ctx)
	postgresServer.container = nil
}

// Command migrate manages the postgres ledger schema.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	"github.com/rentledger/backend/internal/infrastructure/migration"
	"github.com/rentledger/backend/migrations"
	"go.uber.org/zap"
)

const usage = `Rent Ledger schema migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations, negative n rolls back
  goto <version>        Migrate to a specific version
  version               Show the applied version
  force <version>       Mark a version applied (repairs a dirty database)
  drop                  Drop every table (needs -confirm)
  create <name> [desc]  Scaffold a new migration pair on disk
  list                  List migrations on disk

Flags:
`

type options struct {
	dir     string
	confirm bool
}

// dbCommand runs against a connected migrator
type dbCommand func(ctx context.Context, m *migration.Migrator, log *zap.Logger, args []string) error

var dbCommands = map[string]dbCommand{
	"up": func(ctx context.Context, m *migration.Migrator, _ *zap.Logger, _ []string) error {
		return m.Up(ctx)
	},
	"down": func(ctx context.Context, m *migration.Migrator, _ *zap.Logger, _ []string) error {
		return m.Down(ctx)
	},
	"step": func(ctx context.Context, m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(ctx, n)
	},
	"goto": func(ctx context.Context, m *migration.Migrator, _ *zap.Logger, args []string) error {
		v, err := intArg(args, "goto <version>")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("version must not be negative: %d", v)
		}
		return m.GoTo(ctx, uint(v))
	},
	"version": func(_ context.Context, m *migration.Migrator, log *zap.Logger, _ []string) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	},
	"force": func(_ context.Context, m *migration.Migrator, _ *zap.Logger, args []string) error {
		v, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		return m.Force(v)
	},
}

func main() {
	var (
		opts     options
		logLevel string
	)
	flag.StringVar(&opts.dir, "path", "", "Migrations directory; empty uses the migrations built into the binary")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&opts.confirm, "confirm", false, "Confirm drop")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts, flag.Args(), log)
	stop()
	_ = logger.Sync(log)
	if err != nil {
		log.Error("Migration command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, args []string, log *zap.Logger) error {
	command, rest := args[0], args[1:]

	switch command {
	case "create":
		if len(rest) == 0 {
			return errors.New("usage: migrate create <name> [description]")
		}
		var desc string
		if len(rest) > 1 {
			desc = rest[1]
		}
		mf, err := migration.CreateMigration(migrationsDir(opts.dir), rest[0], desc)
		if err != nil {
			return err
		}
		log.Info("Migration created", zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath), zap.String("down_file", mf.DownPath))
		return nil
	case "list":
		names, err := migration.ListMigrations(migrationsDir(opts.dir))
		if err != nil {
			return err
		}
		log.Info("Migrations on disk", zap.Int("count", len(names)))
		for _, n := range names {
			fmt.Println("  -", n)
		}
		return nil
	case "drop":
		if !opts.confirm {
			return errors.New("drop refused: rerun as 'migrate -confirm drop'")
		}
	default:
		if _, ok := dbCommands[command]; !ok {
			return fmt.Errorf("unknown command %q", command)
		}
	}

	m, closeDB, err := connect(ctx, opts, log)
	if err != nil {
		return err
	}
	defer closeDB()

	if command == "drop" {
		return m.Drop()
	}
	return dbCommands[command](ctx, m, log, rest)
}

// connect opens the configured postgres database and a migrator over it
func connect(ctx context.Context, opts options, log *zap.Logger) (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		return nil, nil, errors.New("migrations target postgres; sqlite schemas are created by the server on start")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var m *migration.Migrator
	if opts.dir == "" {
		m, err = migration.NewEmbedded(db, migrations.FS, log)
	} else {
		m, err = migration.New(db, migrationsDir(opts.dir), log)
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return m, func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}, nil
}

func intArg(args []string, form string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: migrate %s", form)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", args[0], err)
	}
	return n, nil
}

// migrationsDir resolves dir, defaulting to ./migrations and then to the
// repository copy next to the executable.
func migrationsDir(dir string) string {
	if dir == "" {
		dir = "migrations"
		if _, err := os.Stat(dir); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", "migrations")
				if _, err := os.Stat(candidate); err == nil {
					dir = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dbMeterName      = "rentledger-backend/db"
	queryStartKey    = "telemetry:query_start"
	callbackPrefix   = "telemetry"
	defaultDBSystem  = "postgresql"
	defaultSlowQuery = 200 * time.Millisecond
)

// DBConfig controls GORM instrumentation
type DBConfig struct {
	// Tracing registers the otelgorm span plugin
	Tracing bool
	// LogFullSQL keeps bound query variables on spans
	LogFullSQL         bool
	SlowQueryThreshold time.Duration
	// System is the db.system attribute, "postgresql" when empty
	System string
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
}

type dbInstrumentation struct {
	cfg    DBConfig
	logger *zap.Logger

	queries  *Counter
	slow     *Counter
	duration *Histogram
}

// InstrumentDB adds spans, statement metrics and connection pool gauges to
// db. Statement metrics and pool gauges are registered only when mp is
// enabled; spans only when cfg.Tracing is set.
func InstrumentDB(db *gorm.DB, cfg DBConfig, mp *MeterProvider, log *zap.Logger) error {
	if cfg.System == "" {
		cfg.System = defaultDBSystem
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = defaultSlowQuery
	}
	in := &dbInstrumentation{cfg: cfg, logger: nopIfNil(log).Named("db")}

	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.System)}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if cfg.TracerProvider != nil {
			opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("failed to register otelgorm plugin: %w", err)
		}
	}

	if mp.IsEnabled() {
		meter := mp.Meter(dbMeterName)
		if err := in.initInstruments(meter); err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := registerPoolGauges(meter, sqlDB.Stats); err != nil {
			return err
		}
	}

	if !cfg.Tracing && in.queries == nil {
		return nil
	}
	if err := in.registerCallbacks(db); err != nil {
		return err
	}
	in.logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", cfg.Tracing),
		zap.Bool("metrics", in.queries != nil),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)
	return nil
}

func (in *dbInstrumentation) initInstruments(meter metric.Meter) error {
	var err error
	if in.queries, err = NewCounter(meter, "db_query_total", "Total number of database statements", "{queries}"); err != nil {
		return err
	}
	if in.slow, err = NewCounter(meter, "db_slow_query_total", "Statements slower than the slow query threshold", "{queries}"); err != nil {
		return err
	}
	in.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	return err
}

func (in *dbInstrumentation) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create",
			func(n string, f func(*gorm.DB)) error { return cb.Create().Before("gorm:create").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Create().After("gorm:create").Register(n, f) }},
		{"query",
			func(n string, f func(*gorm.DB)) error { return cb.Query().Before("gorm:query").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Query().After("gorm:query").Register(n, f) }},
		{"update",
			func(n string, f func(*gorm.DB)) error { return cb.Update().Before("gorm:update").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Update().After("gorm:update").Register(n, f) }},
		{"delete",
			func(n string, f func(*gorm.DB)) error { return cb.Delete().Before("gorm:delete").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Delete().After("gorm:delete").Register(n, f) }},
		{"row",
			func(n string, f func(*gorm.DB)) error { return cb.Row().Before("gorm:row").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Row().After("gorm:row").Register(n, f) }},
		{"raw",
			func(n string, f func(*gorm.DB)) error { return cb.Raw().Before("gorm:raw").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Raw().After("gorm:raw").Register(n, f) }},
	}
	for _, h := range hooks {
		if err := h.before(callbackPrefix+":before_"+h.op, in.before); err != nil {
			return fmt.Errorf("failed to register before_%s callback: %w", h.op, err)
		}
		if err := h.after(callbackPrefix+":after_"+h.op, in.after(h.op)); err != nil {
			return fmt.Errorf("failed to register after_%s callback: %w", h.op, err)
		}
	}
	return nil
}

func (in *dbInstrumentation) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (in *dbInstrumentation) after(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		var elapsed time.Duration
		if v, ok := db.InstanceGet(queryStartKey); ok {
			if start, ok := v.(time.Time); ok {
				elapsed = time.Since(start)
			}
		}
		table := db.Statement.Table
		slow := elapsed > in.cfg.SlowQueryThreshold

		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
			if table != "" {
				span.SetAttributes(attribute.String("db.sql.table", table))
			}
			if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
				RecordError(span, db.Error)
			}
			if slow {
				AddEvent(span, "slow_query",
					"db.duration_ms", elapsed.Milliseconds(),
					"db.threshold_ms", in.cfg.SlowQueryThreshold.Milliseconds(),
				)
			}
		}

		if in.queries == nil {
			return
		}
		opAttr := AttrDBOperation.String(op)
		in.queries.Inc(ctx, opAttr)
		in.duration.RecordDuration(ctx, elapsed, opAttr)
		if slow {
			in.slow.Inc(ctx, opAttr, AttrDBTable.String(table))
		}
	}
}

// registerPoolGauges reports connection pool state on each collection
func registerPoolGauges(meter metric.Meter, stats func() sql.DBStats) error {
	open, err := meter.Int64ObservableGauge("db_connections_open",
		metric.WithDescription("Open connections, in use and idle"), metric.WithUnit("{connections}"))
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}
	byState, err := meter.Int64ObservableGauge("db_connections",
		metric.WithDescription("Connections by state"), metric.WithUnit("{connections}"))
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("db_connections_max",
		metric.WithDescription("Maximum open connections"), metric.WithUnit("{connections}"))
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(open, int64(s.OpenConnections))
		o.ObserveInt64(maxOpen, int64(s.MaxOpenConnections))
		o.ObserveInt64(byState, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(byState, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		return nil
	}, open, byState, maxOpen)
	if err != nil {
		return fmt.Errorf("failed to register pool gauge callback: %w", err)
	}
	return nil
}

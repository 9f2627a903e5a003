package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "pm_timing:start"

const defaultSlowQueryThresh = 200 * time.Millisecond

// DBInstrumentation adds query spans, slow query marking, a query duration
// histogram and connection pool gauges to a gorm DB.
type DBInstrumentation struct {
	cfg      config.TelemetryConfig
	dbSystem string
	logger   *zap.Logger

	queryDuration *Histogram
	queryErrors   *Counter
	poolGauges    map[string]*Gauge

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewDBInstrumentation creates the instruments on meter. dbSystem is the
// driver name reported on spans.
func NewDBInstrumentation(meter metric.Meter, cfg config.TelemetryConfig, dbSystem string, logger *zap.Logger) (*DBInstrumentation, error) {
	if cfg.DBSlowQueryThresh <= 0 {
		cfg.DBSlowQueryThresh = defaultSlowQueryThresh
	}
	d := &DBInstrumentation{
		cfg:        cfg,
		dbSystem:   dbSystem,
		logger:     logger,
		poolGauges: make(map[string]*Gauge),
		stopCh:     make(chan struct{}),
	}

	var err error
	d.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db.query.duration",
		Description: "Database query duration",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	d.queryErrors, err = NewCounter(meter, "db.query.errors", "Failed database queries", "{query}")
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"open", "in_use", "idle"} {
		g, err := NewGauge(meter, "db.pool.connections."+name, "Connection pool "+name+" connections", "{connection}")
		if err != nil {
			return nil, err
		}
		d.poolGauges[name] = g
	}
	return d, nil
}

// Register installs the otelgorm plugin (when DB tracing is enabled) and the
// timing callbacks on db.
func (d *DBInstrumentation) Register(db *gorm.DB) error {
	if d.cfg.Enabled && d.cfg.DBTraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(d.dbSystem)}
		if !d.cfg.DBLogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
		d.logger.Info("Database tracing enabled",
			zap.Bool("log_full_sql", d.cfg.DBLogFullSQL),
			zap.Duration("slow_query_threshold", d.cfg.DBSlowQueryThresh),
		)
	}

	// Timing hooks sit inside otelgorm's span hooks so afterQuery still sees
	// the query span in the statement context.
	cb := db.Callback()
	for _, h := range []struct {
		name   string
		before callbackRegistrar
		after  callbackRegistrar
		op     string
	}{
		{"create", cb.Create().After("otel:before:create").Before("gorm:create"), cb.Create().After("gorm:create").Before("otel:after:create"), "create"},
		{"query", cb.Query().After("otel:before:select").Before("gorm:query"), cb.Query().After("gorm:query").Before("otel:after:select"), "select"},
		{"update", cb.Update().After("otel:before:update").Before("gorm:update"), cb.Update().After("gorm:update").Before("otel:after:update"), "update"},
		{"delete", cb.Delete().After("otel:before:delete").Before("gorm:delete"), cb.Delete().After("gorm:delete").Before("otel:after:delete"), "delete"},
		{"row", cb.Row().After("otel:before:row").Before("gorm:row"), cb.Row().After("gorm:row").Before("otel:after:row"), ""},
		{"raw", cb.Raw().After("otel:before:raw").Before("gorm:raw"), cb.Raw().After("gorm:raw").Before("otel:after:raw"), ""},
	} {
		if err := h.before.Register("pm_timing:before_"+h.name, beforeQuery); err != nil {
			return err
		}
		if err := h.after.Register("pm_timing:after_"+h.name, d.afterQuery(h.op)); err != nil {
			return err
		}
	}
	return nil
}

type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func beforeQuery(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (d *DBInstrumentation) afterQuery(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		elapsed := time.Since(start)
		failed := db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound)

		operation := op
		if operation == "" {
			operation = detectOperation(db.Statement.SQL.String())
		}
		attrs := []attribute.KeyValue{AttrDBOperation.String(operation), AttrDBTable.String(db.Statement.Table)}
		d.queryDuration.RecordDuration(ctx, elapsed, attrs...)
		if failed {
			d.queryErrors.Inc(ctx, attrs...)
		}

		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if failed {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
		if elapsed > d.cfg.DBSlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", d.cfg.DBSlowQueryThresh.Milliseconds()),
			))
		}
	}
}

func detectOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	switch op := strings.ToUpper(fields[0]); op {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return strings.ToLower(op)
	case "WITH":
		return "select"
	default:
		return "other"
	}
}

// StartPoolStatsCollection records pool gauges every interval until Stop
func (d *DBInstrumentation) StartPoolStatsCollection(ctx context.Context, sqlDB *sql.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		d.collectPoolStats(ctx, sqlDB)
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.stopCh:
				return
			case <-ticker.C:
				d.collectPoolStats(ctx, sqlDB)
			}
		}
	}()
}

func (d *DBInstrumentation) collectPoolStats(ctx context.Context, sqlDB *sql.DB) {
	stats := sqlDB.Stats()
	d.poolGauges["open"].Record(ctx, int64(stats.OpenConnections))
	d.poolGauges["in_use"].Record(ctx, int64(stats.InUse))
	d.poolGauges["idle"].Record(ctx, int64(stats.Idle))
}

// Stop ends pool stats collection
func (d *DBInstrumentation) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
	d.wg.Wait()
}

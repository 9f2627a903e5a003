package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"github.com/projectmgmt/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is an open gorm handle plus the pool underneath it.
type Database struct {
	DB     *gorm.DB
	sqlDB  *sql.DB
	driver string
}

type openOptions struct {
	logger   logger.Interface
	attempts int
	backoff  time.Duration
}

type OpenOption func(*openOptions)

// WithLogger routes gorm's statement log through l. The default is silent.
func WithLogger(l logger.Interface) OpenOption {
	return func(o *openOptions) { o.logger = l }
}

// WithConnectRetry pings up to attempts times, doubling backoff between
// tries, before giving up.
func WithConnectRetry(attempts int, backoff time.Duration) OpenOption {
	return func(o *openOptions) {
		o.attempts = max(attempts, 1)
		o.backoff = backoff
	}
}

// Open connects to the configured PostgreSQL or SQLite database, sizes the
// pool and verifies the connection.
func Open(ctx context.Context, cfg *config.DatabaseConfig, opts ...OpenOption) (*Database, error) {
	o := openOptions{logger: logger.Default.LogMode(logger.Silent), attempts: 1}
	for _, opt := range opts {
		opt(&o)
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver != config.DriverSQLite,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg)

	d := &Database{DB: gdb, sqlDB: sqlDB, driver: cfg.Driver}
	if err := d.pingWithRetry(ctx, o.attempts, o.backoff); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.Driver == config.DriverSQLite {
		// one writer at a time or sqlite reports "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

func (d *Database) pingWithRetry(ctx context.Context, attempts int, backoff time.Duration) error {
	var err error
	for i := range attempts {
		if err = d.sqlDB.PingContext(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(backoff << i):
		}
	}
	return fmt.Errorf("ping database after %d attempt(s): %w", attempts, err)
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func (d *Database) Driver() string { return d.driver }

// SQL exposes the pool for metrics and migrations
func (d *Database) SQL() *sql.DB { return d.sqlDB }

// AutoMigrate builds the schema from the models. Only SQLite databases use
// it; PostgreSQL is managed by the SQL migrations.
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func (d *Database) Close() error { return d.sqlDB.Close() }

// Ping satisfies the health handler's Pinger
func (d *Database) Ping(ctx context.Context) error { return d.sqlDB.PingContext(ctx) }

func (d *Database) Stats() sql.DBStats { return d.sqlDB.Stats() }

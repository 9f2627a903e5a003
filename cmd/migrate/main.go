// Command migrate manages the PostgreSQL schema of the project management
// backend.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"github.com/projectmgmt/backend/internal/infrastructure/logger"
	"github.com/projectmgmt/backend/internal/infrastructure/migration"
	"github.com/projectmgmt/backend/migrations"
	"go.uber.org/zap"
)

const usage = `Project management database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate up or down to a version
  version               Print the applied version
  force <version>       Record a version without running it (clears a dirty state)
  create <name> [desc]  Write a new up/down pair into -path (default ./migrations)
  list                  List migrations and check each has up and down scripts

Flags:
  -path string          Read migrations from a directory instead of the binary
  -log-level string     Log level (default "info")`

// schemaCommands run against a live database
var schemaCommands = map[string]func(m *migration.Migrator, args []string) error{
	"up":   func(m *migration.Migrator, _ []string) error { return m.Up() },
	"down": func(m *migration.Migrator, _ []string) error { return m.Down() },
	"step": func(m *migration.Migrator, args []string) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"goto": func(m *migration.Migrator, args []string) error {
		n, err := intArg(args, "version")
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.New("version must not be negative")
		}
		return m.GoTo(uint(n))
	},
	"force": func(m *migration.Migrator, args []string) error {
		n, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(n)
	},
	"version": func(m *migration.Migrator, _ []string) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	},
}

func main() {
	path := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stderr", TimeFormat: time.DateTime})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create":
		err = create(*path, rest, log)
	case "list":
		err = list(*path, log)
	default:
		run, ok := schemaCommands[cmd]
		if !ok {
			log.Error("Unknown command", zap.String("command", cmd))
			flag.Usage()
			os.Exit(2)
		}
		err = withMigrator(*path, log, func(m *migration.Migrator) error { return run(m, rest) })
	}
	if err != nil {
		log.Error("Migration command failed", zap.String("command", cmd), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func withMigrator(path string, log *zap.Logger, fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("driver %q: SQL migrations target PostgreSQL, sqlite schemas are built by the server", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if path != "" {
		m, err = migration.NewFromPath(db, path, log)
	} else {
		m, err = migration.New(db, log)
	}
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func create(path string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return errors.New("usage: migrate create <name> [description]")
	}
	if path == "" {
		path = "migrations"
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	c, err := migration.Create(path, args[0], description, time.Now())
	if err != nil {
		return err
	}
	log.Info("Migration created", zap.String("up", c.UpPath), zap.String("down", c.DownPath))
	return nil
}

func list(path string, log *zap.Logger) error {
	var source fs.FS = migrations.FS
	if path != "" {
		source = os.DirFS(path)
	}
	entries, err := migration.List(source)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(e.Base())
	}
	if bad := migration.Unpaired(entries); len(bad) > 0 {
		for _, e := range bad {
			log.Error("Migration is missing a script", zap.String("migration", e.Base()),
				zap.Bool("up", e.HasUp), zap.Bool("down", e.HasDown))
		}
		return fmt.Errorf("%d unpaired migration(s)", len(bad))
	}
	return nil
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", what, args[0])
	}
	return n, nil
}

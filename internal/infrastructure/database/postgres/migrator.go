// Package postgres provides the PostgreSQL connection pool, transaction
// helper and schema migrations.  The migrations ship embedded in the binary;
// a filesystem directory can be used instead for development.
package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres:// driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file:// source
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/qaioz/molstore/internal/config"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrator applies the molstore schema.  It opens its own connection so that
// closing it never affects the shared pool.
type Migrator struct {
	m      *migrate.Migrate
	logger logging.Logger
}

// NewMigrator builds a Migrator for cfg.  When cfg.MigrationsPath is empty
// the embedded migrations are used.
func NewMigrator(cfg config.DatabaseConfig, log logging.Logger) (*Migrator, error) {
	dbURL := buildDSN(cfg)

	var (
		m   *migrate.Migrate
		err error
	)
	if cfg.MigrationsPath == "" {
		src, srcErr := iofs.New(embeddedMigrations, "migrations")
		if srcErr != nil {
			return nil, fmt.Errorf("failed to open embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, dbURL)
	} else {
		m, err = migrate.New(sourceURL(cfg.MigrationsPath), dbURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m: m, logger: log}, nil
}

// sourceURL turns a directory into a file:// source URL.  Values that
// already carry a scheme are passed through.
func sourceURL(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] == ':' {
			return path
		}
		if path[i] == '/' {
			break
		}
	}
	return "file://" + path
}

// Up applies all pending migrations.  No pending migrations is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	mg.logVersion("Database migrations applied")
	return nil
}

// Down rolls back steps migrations.
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}
	if err := mg.m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to rollback %d step(s): %w", steps, err)
	}
	mg.logVersion("Database migrations rolled back")
	return nil
}

// Status returns the applied version (0 when none) and the dirty flag.
func (mg *Migrator) Status() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the schema version without running migrations.  Used to
// recover from a dirty state after a failed migration.
func (mg *Migrator) Force(version int) error {
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	mg.logger.Warn("Migration version forced", logging.Int("version", version))
	return nil
}

// Close releases the migrator's source and database handles.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

func (mg *Migrator) logVersion(msg string) {
	version, dirty, err := mg.Status()
	if err != nil {
		mg.logger.Warn("Failed to get migration version", logging.Err(err))
		return
	}
	mg.logger.Info(msg,
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
}

// RunMigrations applies all pending migrations for cfg and closes the
// migrator.  Called by the API server on startup.
func RunMigrations(cfg config.DatabaseConfig, log logging.Logger) error {
	mg, err := NewMigrator(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := mg.Close(); cerr != nil {
			log.Warn("Failed to close migrator", logging.Err(cerr))
		}
	}()
	return mg.Up()
}

//Personal.AI order the ending

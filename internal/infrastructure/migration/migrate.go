package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/erp/backoffice/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrator applies the settings schema to PostgreSQL with golang-migrate
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// New creates a Migrator over an open connection. An empty dir selects the
// migrations embedded in the binary; otherwise SQL files are read from dir.
func New(db *sql.DB, dir string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "schema_migrations"})
	if err != nil {
		return nil, fmt.Errorf("create postgres migration driver: %w", err)
	}

	var m *migrate.Migrate
	if dir == "" {
		src, srcErr := iofs.New(migrations.FS, ".")
		if srcErr != nil {
			return nil, fmt.Errorf("open embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithInstance("iofs", src, "postgres", driver)
	} else {
		m, err = migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{m: m, logger: logger.Named("migrate")}, nil
}

// NewFromURL creates a Migrator from a database URL and a migration source
// filesystem, such as migrations.FS
func NewFromURL(databaseURL string, fsys fs.FS, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{m: m, logger: logger.Named("migrate")}, nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	mg.logger.Info("Applying pending migrations")
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("Schema already up to date")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	return mg.logVersion("Migrations applied")
}

// Down rolls every migration back
func (mg *Migrator) Down() error {
	mg.logger.Info("Rolling back all migrations")
	if err := mg.m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("Nothing to roll back")
			return nil
		}
		return fmt.Errorf("migrate down: %w", err)
	}
	mg.logger.Info("Schema rolled back")
	return nil
}

// Steps moves n migrations forward, or back when n is negative
func (mg *Migrator) Steps(n int) error {
	mg.logger.Info("Stepping migrations", zap.Int("steps", n))
	if err := mg.m.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("Schema already up to date")
			return nil
		}
		return fmt.Errorf("migrate steps %d: %w", n, err)
	}
	return mg.logVersion("Migration steps applied")
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	mg.logger.Info("Migrating to version", zap.Uint("target", version))
	if err := mg.m.Migrate(version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("Schema already at target version")
			return nil
		}
		return fmt.Errorf("migrate to %d: %w", version, err)
	}
	return mg.logVersion("Migrated to version")
}

// Version reports the applied version and whether the last run left the
// schema dirty. A fresh database reports version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied and clears the dirty flag without
// running any SQL
func (mg *Migrator) Force(version int) error {
	mg.logger.Warn("Forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every object in the database
func (mg *Migrator) Drop() error {
	mg.logger.Warn("Dropping every database object")
	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

// Close releases the source and the database driver
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) logVersion(msg string) error {
	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.logger.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

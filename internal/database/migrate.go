package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"

	"github.com/LeiShi1313/readrepeat/migrations"
)

// MigrationStatus describes the schema version recorded by golang-migrate
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

// newMigrator builds a migrator over the open connection.
// The migrator is never closed: closing it would close the shared *sql.DB.
func (db *DB) newMigrator() (*migrate.Migrate, error) {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	var driver migratedb.Driver
	switch db.Driver {
	case DriverSQLite:
		driver, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	case DriverPostgres:
		driver, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	default:
		return nil, fmt.Errorf("no migrations for driver %q", db.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, db.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.Driver, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration
func (db *DB) MigrateUp() error {
	m, err := db.newMigrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("database schema is up to date")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("database migrations applied")
	return nil
}

// MigrateDown rolls back the given number of migrations; steps <= 0 rolls back everything
func (db *DB) MigrateDown(steps int) error {
	m, err := db.newMigrator()
	if err != nil {
		return err
	}
	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// MigrationVersion reports the current schema version
func (db *DB) MigrationVersion() (MigrationStatus, error) {
	m, err := db.newMigrator()
	if err != nil {
		return MigrationStatus{}, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to read migration version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

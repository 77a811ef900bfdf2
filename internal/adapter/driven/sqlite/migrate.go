package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrSchemaOutdated is returned by VerifySchema when the database has not been
// migrated to the latest embedded schema version.
var ErrSchemaOutdated = errors.New("database schema is not up to date")

// RunMigrations applies the embedded pokedex schema migrations. Already
// applied migrations are skipped. Only the seeding tool calls it; the server
// opens the database read-only and calls VerifySchema instead.
func RunMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// VerifySchema checks that db was migrated cleanly to the latest embedded
// schema version. It only reads golang-migrate's schema_migrations table.
func VerifySchema(ctx context.Context, db *sql.DB) error {
	want, err := latestSchemaVersion()
	if err != nil {
		return err
	}

	var (
		version uint
		dirty   bool
	)
	err = db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: no migrations applied", ErrSchemaOutdated)
	}
	if err != nil {
		return fmt.Errorf("%w: read schema version: %w", ErrSchemaOutdated, err)
	}

	if dirty {
		return fmt.Errorf("%w: version %d is dirty", ErrSchemaOutdated, version)
	}
	if version < want {
		return fmt.Errorf("%w: at version %d, want %d", ErrSchemaOutdated, version, want)
	}

	return nil
}

// latestSchemaVersion walks the embedded migrations and returns the highest version.
func latestSchemaVersion() (uint, error) {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create migration source: %w", err)
	}
	defer sourceDriver.Close()

	version, err := sourceDriver.First()
	if err != nil {
		return 0, fmt.Errorf("first migration: %w", err)
	}

	for {
		next, err := sourceDriver.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("next migration after %d: %w", version, err)
		}
		version = next
	}
}

// Package sqlite stores the Pokédex dataset in SQLite so it can be seeded
// offline and loaded by the server at startup.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// DB holds separate writer and reader connection pools over one database file.
// The writer is limited to a single connection (seeding and migrations only);
// the reader pool serves dataset loads. Writer is nil when the DB was opened
// with OpenReadOnly.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
}

// NewDB opens the database at dbPath with WAL mode, busy timeout, synchronous
// NORMAL and foreign keys enabled, and verifies both pools can connect.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath,
	)

	writer, err := openPool(ctx, dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	reader, err := openPool(ctx, dsn, 4)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
	}, nil
}

// OpenReadOnly opens an existing database at dbPath with a reader pool only.
// The file must already exist; it is never created, migrated or written.
func OpenReadOnly(ctx context.Context, dbPath string) (*DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open read-only database: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", dbPath)

	reader, err := openPool(ctx, dsn, 4)
	if err != nil {
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{Reader: reader}, nil
}

func openPool(ctx context.Context, dsn string, maxOpen int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxOpen)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

// Finalize checkpoints the write-ahead log into the main file and switches the
// database back to rollback-journal mode, so the file can later be opened
// read-only without -wal and -shm companions. Leaving WAL mode needs the
// writer to be the only open connection, so the reader pool is closed first
// and the DB is only good for Close afterwards.
func (db *DB) Finalize(ctx context.Context) error {
	if err := db.Reader.Close(); err != nil {
		return fmt.Errorf("close reader: %w", err)
	}

	if _, err := db.Writer.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint wal: %w", err)
	}

	if _, err := db.Writer.ExecContext(ctx, "PRAGMA journal_mode=DELETE"); err != nil {
		return fmt.Errorf("set journal mode: %w", err)
	}

	return nil
}

// Close closes both reader and writer connections. Returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if db.Writer == nil {
		return firstErr
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DB wraps the single shared SQLite connection and provides repository methods.
type DB struct {
	conn *sql.DB
}

// Open opens the store file at path. The file is expected to exist; use
// Bootstrap first to create it.
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: every request is serialized on it, so read-then-write
	// sequences inside a transaction cannot interleave.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Bootstrap makes sure a seeded store exists at path. An existing file is
// left untouched unless overwrite is set, in which case it is deleted and
// rebuilt. Reports whether a new store was created.
func Bootstrap(path string, overwrite bool) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating data dir: %w", err)
	}

	_, err := os.Stat(path)
	switch {
	case err == nil && !overwrite:
		return false, nil
	case err == nil:
		if err := os.Remove(path); err != nil {
			return false, fmt.Errorf("removing existing database: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("checking database file: %w", err)
	}

	if err := RunMigrations(path); err != nil {
		// Leave no half-initialized file behind; the next start retries.
		os.Remove(path)
		return false, err
	}
	return true, nil
}

// RunMigrations applies the embedded schema and seed migrations to the
// SQLite file at path.
func RunMigrations(path string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+path)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Tx is a unit of work. All repository writes go through a Tx.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a transaction, committing if fn returns nil and
// rolling back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReadTx runs fn in a transaction that is always rolled back.
func (db *DB) ReadTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()
	return fn(&Tx{tx: sqlTx})
}

package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/polychat/polychat/internal/profile"
	"github.com/polychat/polychat/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database pointed to by the profile's DSN.
//
// Connection settings:
// - Foreign keys ON: the message table references thread(id) and the schema
//   relies on the constraint being enforced.
// - Journal mode WAL: concurrent readers (sidebar, history views) interleave
//   with the single write stream without locking errors.
// - busy_timeout guards the rare writer/writer overlap.
//
// Note: with the `modernc.org/sqlite` driver each pragma must be prefixed
// with `_pragma=`.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// A single connection is optimal for SQLite with WAL; the handle is
	// long-lived and shared by reference.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	driver := DB{db: sqliteDB, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the schema when it does not exist yet. The schema is small
// enough that idempotent CREATE IF NOT EXISTS beats versioned migrations.
func (d *DB) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS thread (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			created_ts INTEGER NOT NULL,
			updated_ts INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_thread_updated_ts ON thread(updated_ts);

		CREATE TABLE IF NOT EXISTS message (
			id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL REFERENCES thread(id),
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL DEFAULT '',
			created_ts INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_message_thread_id ON message(thread_id);

		CREATE TABLE IF NOT EXISTS setting (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT ''
		);
	`
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}
	return nil
}

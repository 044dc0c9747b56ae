// Package sqlite persists the catalog to a local SQLite file via
// mattn/go-sqlite3. Unlike persist/mgo there is no change-stream primitive
// to watch, so every mutating call also appends a row to a per-concern
// changelog table; WatchX polls that table on a ticker and replays rows
// newer than the last one it has seen.
package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/catalogdb/grantee/types"
)

const defaultPollInterval = 200 * time.Millisecond

var schema = []string{
	`CREATE TABLE IF NOT EXISTS principals (
		name TEXT PRIMARY KEY,
		kind INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS principal_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		kind INTEGER NOT NULL,
		method TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS grants (
		grantee TEXT NOT NULL,
		db_id INTEGER NOT NULL,
		object_id INTEGER NOT NULL,
		object_type INTEGER NOT NULL,
		name TEXT NOT NULL,
		owner INTEGER NOT NULL,
		privileges INTEGER NOT NULL,
		PRIMARY KEY (grantee, db_id, object_id, object_type)
	)`,
	`CREATE TABLE IF NOT EXISTS grant_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		grantee TEXT NOT NULL,
		db_id INTEGER NOT NULL,
		object_id INTEGER NOT NULL,
		object_type INTEGER NOT NULL,
		name TEXT NOT NULL,
		owner INTEGER NOT NULL,
		privileges INTEGER NOT NULL,
		method TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS role_grants (
		grantee TEXT NOT NULL,
		role TEXT NOT NULL,
		PRIMARY KEY (grantee, role)
	)`,
	`CREATE TABLE IF NOT EXISTS role_grant_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		grantee TEXT NOT NULL,
		role TEXT NOT NULL,
		method TEXT NOT NULL
	)`,
}

// Store is a types.CatalogPersister backed by a single SQLite database file.
type Store struct {
	db           *sql.DB
	pollInterval time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithPollInterval overrides how often WatchX methods poll their changelog
// table for new rows. The default is 200ms.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) { s.pollInterval = d }
}

// Open creates (if necessary) and migrates the SQLite database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, pollInterval: defaultPollInterval}
	for _, opt := range opts {
		opt(s)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ types.CatalogPersister = (*Store)(nil)

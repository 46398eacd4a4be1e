// Package store implements the sole persistence contract for the
// dispatch pipeline. No other component issues ad-hoc queries against
// the database.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a SQLite-backed *sql.DB configured for the write-heavy,
// access pattern of a dispatch pipeline: WAL mode, a single pooled
// connection shared by every statement, a generous mmap/page cache, and
// foreign keys enforced so an orphaned Request (one whose Content was
// never saved) is a database guarantee against, not just application
// discipline.
type Store struct {
	db *sql.DB
}

// Open creates (or attaches to) the SQLite database at path and
// applies the pragmas and schema this package requires.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// A single connection avoids SQLITE_BUSY under WAL for the
	// write-heavy claim/bulk-update statements. Reads share the same
	// connection, so statements from this process run one at a time.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.configure(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// configure applies the remaining storage settings this pipeline
// depends on: foreign key enforcement, a 256 MiB mmap region, a 64 MiB
// page cache, a 4096-byte page size, and incremental auto-vacuum. WAL
// and synchronous=NORMAL are set through the DSN in Open.
func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA mmap_size = 268435456",
		"PRAGMA cache_size = -65536", // 64 MiB, negative = KiB of page cache
		"PRAGMA page_size = 4096",
		"PRAGMA auto_vacuum = INCREMENTAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS contents (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	subject    TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS requests (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	topic_id            TEXT NOT NULL DEFAULT '',
	content_id          INTEGER NOT NULL REFERENCES contents(id),
	email               TEXT NOT NULL,
	scheduled_at        TIMESTAMP NOT NULL,
	status              INTEGER NOT NULL DEFAULT 0,
	provider_message_id TEXT,
	error               TEXT,
	created_at          TIMESTAMP NOT NULL,
	updated_at          TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_requests_status_scheduled ON requests(status, scheduled_at);
CREATE INDEX IF NOT EXISTS idx_requests_status_created   ON requests(status, created_at);
CREATE INDEX IF NOT EXISTS idx_requests_status_topic     ON requests(status, topic_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_provider_message_id ON requests(provider_message_id) WHERE provider_message_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_requests_topic_id   ON requests(topic_id);
CREATE INDEX IF NOT EXISTS idx_requests_content_id ON requests(content_id);

CREATE TABLE IF NOT EXISTS results (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id INTEGER NOT NULL REFERENCES requests(id),
	status     TEXT NOT NULL,
	raw        TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_request_id ON results(request_id);
CREATE INDEX IF NOT EXISTS idx_results_status      ON results(status);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive; used by the /ready probe.
func (s *Store) Ping() error {
	return s.db.Ping()
}

func nowUTC() time.Time { return time.Now().UTC() }

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS slots (
	slot       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);`

// SQLite stores slot payloads in a single-table SQLite database. WAL mode
// keeps readers unblocked while the single writer flushes snapshots.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and prepares the slots
// table. Safe to call repeatedly against the same file.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: connect database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection avoids
	// SQLITE_BUSY under concurrent flushes from multiple containers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Available() bool {
	return s != nil && s.db != nil
}

func (s *SQLite) Read(slot string) (string, bool, error) {
	if !s.Available() {
		return "", false, nil
	}
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM slots WHERE slot = ?`, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: read slot %q: %w", slot, err)
	}
	return payload, true, nil
}

func (s *SQLite) Write(slot string, payload string) error {
	if !s.Available() {
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO slots (slot, payload) VALUES (?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			payload = excluded.payload,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, slot, payload)
	if err != nil {
		return fmt.Errorf("storage: write slot %q: %w", slot, err)
	}
	return nil
}

// Close releases the underlying database handle. The store reports itself
// unavailable afterwards.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Package denylist is a small persistent ban store keyed by client IP,
// backed by an embedded SQLite database. Migration design mirrors the
// teacher's store package: ordered DDL strings in [migrations], each
// applied exactly once and tracked in schema_migrations.
package denylist

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS denylist (
		ip         TEXT PRIMARY KEY,
		reason     TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT (unixepoch())
	)`,
	`PRAGMA journal_mode=WAL`,
}

// Entry is one banned IP, as returned by List.
type Entry struct {
	IP        string
	Reason    string
	CreatedAt time.Time
}

// Store wraps a SQLite database holding the denylist table.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path and applies any pending
// migrations. Use ":memory:" for ephemeral storage (tests).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		slog.Warn("denylist: busy_timeout pragma failed", "error", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow(
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i, stmt := range migrations {
		v := i + 1
		if v <= current {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", v, err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO schema_migrations(version) VALUES(?)`, v,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", v, err)
		}
		slog.Info("denylist: applied migration", "version", v)
	}
	return nil
}

// Check reports whether ip is currently banned.
func (s *Store) Check(ip string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM denylist WHERE ip = ?`, ip).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Add bans ip, recording reason. Re-adding an already-banned IP updates its
// reason rather than erroring.
func (s *Store) Add(ip, reason string) error {
	_, err := s.db.Exec(
		`INSERT INTO denylist(ip, reason) VALUES(?, ?)
		 ON CONFLICT(ip) DO UPDATE SET reason = excluded.reason`,
		ip, reason,
	)
	return err
}

// Remove lifts a ban. Removing an IP that was never banned is not an error.
func (s *Store) Remove(ip string) error {
	_, err := s.db.Exec(`DELETE FROM denylist WHERE ip = ?`, ip)
	return err
}

// List returns every banned entry, most recently added first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT ip, reason, created_at FROM denylist ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var createdUnix int64
		if err := rows.Scan(&e.IP, &e.Reason, &createdUnix); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(createdUnix, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

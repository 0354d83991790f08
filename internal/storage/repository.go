// Package storage persists the ledger in SQLite. Queries are hand-written
// SQL; the month-close transition commits as a single transaction so a
// half-closed month cannot exist on disk.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// New opens (creating if necessary) the SQLite database at dbPath and runs
// pending migrations.
func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// nullMonth converts an optional month key for storage.
func nullMonth(m core.MonthID) sql.NullString {
	return sql.NullString{String: string(m), Valid: !m.IsZero()}
}

// nullStr converts an optional string for storage.
func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullID converts an optional foreign key for storage.
func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// nullDay converts an optional day-of-month for storage.
func nullDay(d int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(d), Valid: d != 0}
}

// Package db opens the relational store and keeps its schema in place.
package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    pin TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS journal_entries (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL DEFAULT 'Journal Entry',
    content TEXT NOT NULL DEFAULT '',
    primary_mood TEXT NOT NULL DEFAULT '',
    entry_date TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_user_date ON journal_entries (user_id, entry_date DESC);

CREATE TABLE IF NOT EXISTS tags (
    id BIGSERIAL PRIMARY KEY,
    entry_id BIGINT REFERENCES journal_entries(id) ON DELETE CASCADE,
    name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tags_entry ON tags (entry_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    pin TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS journal_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL DEFAULT 'Journal Entry',
    content TEXT NOT NULL DEFAULT '',
    primary_mood TEXT NOT NULL DEFAULT '',
    entry_date TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_user_date ON journal_entries (user_id, entry_date DESC);

CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id INTEGER REFERENCES journal_entries(id) ON DELETE CASCADE,
    name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tags_entry ON tags (entry_id);
`

// Open connects to the database identified by driver ("postgres" or "sqlite")
// and dsn, verifies the connection and creates the schema if needed.
func Open(driver, dsn string) (*sqlx.DB, error) {
	var schema string
	switch driver {
	case "postgres":
		schema = postgresSchema
	case "sqlite":
		schema = sqliteSchema
		dsn = SQLiteDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// InitPostgres opens a PostgreSQL database and creates the schema.
func InitPostgres(dsn string) (*sqlx.DB, error) {
	return Open("postgres", dsn)
}

// SQLiteDSN adds the connection parameters the store relies on: enforced
// foreign keys and a sortable textual time format.
func SQLiteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "_time_format") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

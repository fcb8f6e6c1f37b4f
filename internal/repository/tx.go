// Package repository provides persistence for users, journal entries and
// tags on top of sqlx, with SQL built by squirrel for either PostgreSQL or
// SQLite.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pqUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// base carries the connection and a statement builder with the dialect's placeholders.
type base struct {
	// DB is the database handle for executing queries and transactions.
	DB *sqlx.DB
	sb sq.StatementBuilderType
}

func newBase(db *sqlx.DB, driver string) base {
	format := sq.PlaceholderFormat(sq.Question)
	if driver == "postgres" {
		format = sq.Dollar
	}
	return base{DB: db, sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

// withTx runs fn inside a transaction, rolling back on error.
func (b base) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := b.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// dbTime normalises timestamps before they are written so that textual
// storage (SQLite) sorts chronologically.
func dbTime(t time.Time) time.Time {
	return t.UTC()
}

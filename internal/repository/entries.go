package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/jmoiron/sqlx"
)

var entryColumns = []string{
	"id", "user_id", "title", "content", "primary_mood",
	"entry_date", "created_at", "updated_at",
}

// EntryRepository implements journal entry and tag persistence.
type EntryRepository struct {
	base
}

// NewEntryRepository creates an EntryRepository over db.
func NewEntryRepository(db *sqlx.DB, driver string) *EntryRepository {
	return &EntryRepository{base: newBase(db, driver)}
}

// ListByUser returns every entry of the user, newest entry_date first, with tags loaded.
func (r *EntryRepository) ListByUser(ctx context.Context, userID int64) ([]models.Entry, error) {
	query, args, err := r.sb.Select(entryColumns...).From("journal_entries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("entry_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list entries: %w", err)
	}

	var entries []models.Entry
	if err := r.DB.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	if err := r.attachTags(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *EntryRepository) attachTags(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]int64, len(entries))
	byID := make(map[int64]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		byID[e.ID] = i
	}

	query, args, err := r.sb.Select("id", "entry_id", "name").From("tags").
		Where(sq.Eq{"entry_id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build list tags: %w", err)
	}

	var tags []models.Tag
	if err := r.DB.SelectContext(ctx, &tags, query, args...); err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	for _, t := range tags {
		if i, ok := byID[t.EntryID]; ok {
			entries[i].Tags = append(entries[i].Tags, t)
		}
	}
	return nil
}

// EntryDates returns the entry_date of every entry of the user, newest first.
func (r *EntryRepository) EntryDates(ctx context.Context, userID int64) ([]time.Time, error) {
	query, args, err := r.sb.Select("entry_date").From("journal_entries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("entry_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build entry dates: %w", err)
	}

	var dates []time.Time
	if err := r.DB.SelectContext(ctx, &dates, query, args...); err != nil {
		return nil, fmt.Errorf("entry dates: %w", err)
	}
	return dates, nil
}

// CountByUser returns how many entries the user owns.
func (r *EntryRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	query, args, err := r.sb.Select("COUNT(*)").From("journal_entries").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count entries: %w", err)
	}

	var n int
	if err := r.DB.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// FindByID returns the entry with id owned by userID, or ErrNotFound.
func (r *EntryRepository) FindByID(ctx context.Context, userID, id int64) (*models.Entry, error) {
	query, args, err := r.sb.Select(entryColumns...).From("journal_entries").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find entry: %w", err)
	}

	var e models.Entry
	if err := r.DB.GetContext(ctx, &e, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find entry: %w", err)
	}

	entries := []models.Entry{e}
	if err := r.attachTags(ctx, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// Create inserts e and its tags in one transaction and sets the generated IDs.
func (r *EntryRepository) Create(ctx context.Context, e *models.Entry) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := r.sb.Insert("journal_entries").
			Columns("user_id", "title", "content", "primary_mood", "entry_date", "created_at", "updated_at").
			Values(e.UserID, e.Title, e.Content, e.PrimaryMood,
				dbTime(e.EntryDate), dbTime(e.CreatedAt), dbTime(e.UpdatedAt)).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert entry: %w", err)
		}

		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&e.ID); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		return r.insertTags(ctx, tx, e)
	})
}

func (r *EntryRepository) insertTags(ctx context.Context, tx *sqlx.Tx, e *models.Entry) error {
	for i := range e.Tags {
		e.Tags[i].EntryID = e.ID
		query, args, err := r.sb.Insert("tags").
			Columns("entry_id", "name").
			Values(e.ID, e.Tags[i].Name).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert tag: %w", err)
		}
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&e.Tags[i].ID); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	return nil
}

// Update overwrites the entry's content, mood, date and updated_at and
// replaces its tags. Title and created_at are left untouched. It returns
// ErrNotFound when the entry does not exist for e.UserID.
func (r *EntryRepository) Update(ctx context.Context, e *models.Entry) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := r.sb.Update("journal_entries").
			Set("content", e.Content).
			Set("primary_mood", e.PrimaryMood).
			Set("entry_date", dbTime(e.EntryDate)).
			Set("updated_at", dbTime(e.UpdatedAt)).
			Where(sq.Eq{"id": e.ID}).
			Where(sq.Eq{"user_id": e.UserID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update entry: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}

		if err := r.deleteTags(ctx, tx, e.ID); err != nil {
			return err
		}
		return r.insertTags(ctx, tx, e)
	})
}

func (r *EntryRepository) deleteTags(ctx context.Context, tx *sqlx.Tx, entryID int64) error {
	query, args, err := r.sb.Delete("tags").Where(sq.Eq{"entry_id": entryID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete tags: %w", err)
	}
	return nil
}

// Delete removes the entry owned by userID together with its tags.
// It reports false when no such entry exists.
func (r *EntryRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	deleted := false
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := r.sb.Select("id").From("journal_entries").
			Where(sq.Eq{"id": id}).
			Where(sq.Eq{"user_id": userID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build lookup entry: %w", err)
		}

		var found int64
		if err := tx.GetContext(ctx, &found, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("lookup entry: %w", err)
		}

		if err := r.deleteTags(ctx, tx, id); err != nil {
			return err
		}

		query, args, err = r.sb.Delete("journal_entries").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete entry: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}

		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/jmoiron/sqlx"
)

var userColumns = []string{"id", "username", "pin", "created_at"}

// UserRepository implements user persistence.
type UserRepository struct {
	base
}

// NewUserRepository creates a UserRepository over db.
// driver is "postgres" or "sqlite" and selects the placeholder style.
func NewUserRepository(db *sqlx.DB, driver string) *UserRepository {
	return &UserRepository{base: newBase(db, driver)}
}

func (r *UserRepository) getOne(ctx context.Context, where sq.Sqlizer) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	var u models.User
	if err := r.DB.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// FindByID returns the user with the given id, or ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// FindByCredentials returns the user whose username and PIN both match exactly, or ErrNotFound.
func (r *UserRepository) FindByCredentials(ctx context.Context, username, pin string) (*models.User, error) {
	return r.getOne(ctx, sq.And{sq.Eq{"username": username}, sq.Eq{"pin": pin}})
}

// UsernameTaken reports whether another user (id != exceptID) already uses username.
// Pass exceptID 0 to check against every user.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error) {
	query, args, err := r.sb.Select("COUNT(*)").From("users").
		Where(sq.Eq{"username": username}).
		Where(sq.NotEq{"id": exceptID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build username query: %w", err)
	}

	var n int
	if err := r.DB.GetContext(ctx, &n, query, args...); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

// Create inserts u and sets its ID. It returns ErrDuplicate if the username
// is already stored.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query, args, err := r.sb.Insert("users").
		Columns("username", "pin", "created_at").
		Values(u.Username, u.Pin, dbTime(u.CreatedAt)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}

	if err := r.DB.QueryRowxContext(ctx, query, args...).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UpdateUsername renames the user. It returns ErrNotFound if no row was
// changed and ErrDuplicate if another user holds username.
func (r *UserRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	return r.update(ctx, id, "username", username)
}

// UpdatePin replaces the user's PIN. It returns ErrNotFound if no row was changed.
func (r *UserRepository) UpdatePin(ctx context.Context, id int64, pin string) error {
	return r.update(ctx, id, "pin", pin)
}

func (r *UserRepository) update(ctx context.Context, id int64, column string, value any) error {
	query, args, err := r.sb.Update("users").Set(column, value).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update user: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

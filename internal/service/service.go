// Package service provides the journaling business logic: authentication,
// entry lifecycle, statistics and PDF export. Persistence and session storage
// are reached through the interfaces declared here.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/atinyakov/daybook/internal/apperr"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/repository"
	"go.uber.org/zap"
)

// UserRepository defines the user persistence operations the services need.
type UserRepository interface {
	// FindByID returns repository.ErrNotFound when no user has the id.
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// FindByCredentials matches username and PIN exactly.
	FindByCredentials(ctx context.Context, username, pin string) (*models.User, error)
	// UsernameTaken ignores the user with exceptID.
	UsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error)
	Create(ctx context.Context, u *models.User) error
	UpdateUsername(ctx context.Context, id int64, username string) error
	UpdatePin(ctx context.Context, id int64, pin string) error
}

// EntryRepository defines the journal entry persistence operations.
// Every lookup is scoped to the owning user.
type EntryRepository interface {
	// ListByUser returns entries newest first with tags loaded.
	ListByUser(ctx context.Context, userID int64) ([]models.Entry, error)
	EntryDates(ctx context.Context, userID int64) ([]time.Time, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	FindByID(ctx context.Context, userID, id int64) (*models.Entry, error)
	// Create stores the entry and its tags atomically.
	Create(ctx context.Context, e *models.Entry) error
	// Update replaces content, mood, dates and tags atomically.
	Update(ctx context.Context, e *models.Entry) error
	// Delete reports whether an entry was removed.
	Delete(ctx context.Context, userID, id int64) (bool, error)
}

// Sessions is the token keyed session bridge.
type Sessions interface {
	Start(ctx context.Context, userID int64, username string) (string, error)
	Value(ctx context.Context, token, item string) (string, error)
	Set(ctx context.Context, token, item, value string) error
	End(ctx context.Context, token string) error
}

// Clock returns the current time in the location used for calendar dates.
type Clock func() time.Time

// ClockIn returns a Clock reporting the wall time in loc.
func ClockIn(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

// civilDate is a calendar day with no clock time attached.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

// addDays steps n calendar days. Noon UTC keeps the arithmetic clear of
// daylight saving gaps.
func (c civilDate) addDays(n int) civilDate {
	return dateOf(time.Date(c.year, c.month, c.day+n, 12, 0, 0, 0, time.UTC))
}

// start is the first instant of c in loc. Where midnight does not exist the
// result falls after the gap but still on c.
func (c civilDate) start(loc *time.Location) time.Time {
	return time.Date(c.year, c.month, c.day, 0, 0, 0, 0, loc)
}

// startOfDay truncates t to the first instant of its day in its own location.
func startOfDay(t time.Time) time.Time {
	return dateOf(t).start(t.Location())
}

// nextDay is the first instant of the calendar day after t's.
func nextDay(t time.Time) time.Time {
	return dateOf(t).addDays(1).start(t.Location())
}

func sameDay(a, b time.Time) bool {
	return dateOf(a) == dateOf(b)
}

// storageError logs the cause and hides it behind the generic message.
func storageError(log *zap.Logger, msg string, err error) error {
	log.Error(msg, zap.Error(err))
	return apperr.Storage(err)
}

// findUser loads a user, mapping a missing row to the "User not found" error.
func findUser(ctx context.Context, users UserRepository, log *zap.Logger, id int64) (*models.User, error) {
	u, err := users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, storageError(log, "failed to load user", err)
	}
	return u, nil
}

package service

import (
	"context"
	"time"

	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/repository"
)

type mockUserRepo struct {
	FindByIDFunc          func(ctx context.Context, id int64) (*models.User, error)
	FindByCredentialsFunc func(ctx context.Context, username, pin string) (*models.User, error)
	UsernameTakenFunc     func(ctx context.Context, username string, exceptID int64) (bool, error)
	CreateFunc            func(ctx context.Context, u *models.User) error
	UpdateUsernameFunc    func(ctx context.Context, id int64, username string) error
	UpdatePinFunc         func(ctx context.Context, id int64, pin string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.FindByIDFunc == nil {
		return nil, repository.ErrNotFound
	}
	return m.FindByIDFunc(ctx, id)
}
func (m *mockUserRepo) FindByCredentials(ctx context.Context, username, pin string) (*models.User, error) {
	return m.FindByCredentialsFunc(ctx, username, pin)
}
func (m *mockUserRepo) UsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error) {
	return m.UsernameTakenFunc(ctx, username, exceptID)
}
func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	return m.CreateFunc(ctx, u)
}
func (m *mockUserRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	return m.UpdateUsernameFunc(ctx, id, username)
}
func (m *mockUserRepo) UpdatePin(ctx context.Context, id int64, pin string) error {
	return m.UpdatePinFunc(ctx, id, pin)
}

type mockEntryRepo struct {
	ListByUserFunc  func(ctx context.Context, userID int64) ([]models.Entry, error)
	EntryDatesFunc  func(ctx context.Context, userID int64) ([]time.Time, error)
	CountByUserFunc func(ctx context.Context, userID int64) (int, error)
	FindByIDFunc    func(ctx context.Context, userID, id int64) (*models.Entry, error)
	CreateFunc      func(ctx context.Context, e *models.Entry) error
	UpdateFunc      func(ctx context.Context, e *models.Entry) error
	DeleteFunc      func(ctx context.Context, userID, id int64) (bool, error)
}

func (m *mockEntryRepo) ListByUser(ctx context.Context, userID int64) ([]models.Entry, error) {
	return m.ListByUserFunc(ctx, userID)
}
func (m *mockEntryRepo) EntryDates(ctx context.Context, userID int64) ([]time.Time, error) {
	return m.EntryDatesFunc(ctx, userID)
}
func (m *mockEntryRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	return m.CountByUserFunc(ctx, userID)
}
func (m *mockEntryRepo) FindByID(ctx context.Context, userID, id int64) (*models.Entry, error) {
	return m.FindByIDFunc(ctx, userID, id)
}
func (m *mockEntryRepo) Create(ctx context.Context, e *models.Entry) error {
	return m.CreateFunc(ctx, e)
}
func (m *mockEntryRepo) Update(ctx context.Context, e *models.Entry) error {
	return m.UpdateFunc(ctx, e)
}
func (m *mockEntryRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	return m.DeleteFunc(ctx, userID, id)
}

type mockSessions struct {
	StartFunc func(ctx context.Context, userID int64, username string) (string, error)
	ValueFunc func(ctx context.Context, token, item string) (string, error)
	SetFunc   func(ctx context.Context, token, item, value string) error
	EndFunc   func(ctx context.Context, token string) error
}

func (m *mockSessions) Start(ctx context.Context, userID int64, username string) (string, error) {
	return m.StartFunc(ctx, userID, username)
}
func (m *mockSessions) Value(ctx context.Context, token, item string) (string, error) {
	return m.ValueFunc(ctx, token, item)
}
func (m *mockSessions) Set(ctx context.Context, token, item, value string) error {
	return m.SetFunc(ctx, token, item, value)
}
func (m *mockSessions) End(ctx context.Context, token string) error {
	return m.EndFunc(ctx, token)
}

// fixedClock pins "now" to t.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

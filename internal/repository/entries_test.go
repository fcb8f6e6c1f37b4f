package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/jmoiron/sqlx"
)

func setupEntryMock(t *testing.T) (*EntryRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewEntryRepository(sqlx.NewDb(db, "sqlmock"), "postgres")
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

var entryRowColumns = []string{"id", "user_id", "title", "content", "primary_mood", "entry_date", "created_at", "updated_at"}

func TestListByUser_WithTags(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	d1 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM journal_entries WHERE user_id = $1 ORDER BY entry_date DESC, id DESC`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(entryRowColumns).
			AddRow(int64(20), int64(1), "Journal Entry", "<p>b</p>", "😀", d1, d1, d1).
			AddRow(int64(10), int64(1), "Journal Entry", "<p>a</p>", "🙂", d2, d2, d2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, entry_id, name FROM tags WHERE entry_id IN ($1,$2) ORDER BY id`)).
		WithArgs(int64(20), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "entry_id", "name"}).
			AddRow(int64(1), int64(10), "work").
			AddRow(int64(2), int64(20), "home").
			AddRow(int64(3), int64(10), "focus"))

	entries, err := repo.ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].TagNames(); len(got) != 1 || got[0] != "home" {
		t.Errorf("unexpected tags for newest entry: %v", got)
	}
	if got := entries[1].TagNames(); len(got) != 2 || got[0] != "work" || got[1] != "focus" {
		t.Errorf("unexpected tags for older entry: %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM journal_entries WHERE user_id = $1`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(entryRowColumns))

	entries, err := repo.ListByUser(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM journal_entries WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows(entryRowColumns))

	_, err := repo.FindByID(context.Background(), 1, 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCountByUser(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM journal_entries WHERE user_id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateEntry_WithTags(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO journal_entries (user_id,title,content,primary_mood,entry_date,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`)).
		WithArgs(int64(1), "Journal Entry", "<p>hi</p>", "🙂", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tags (entry_id,name) VALUES ($1,$2) RETURNING id`)).
		WithArgs(int64(11), "a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tags (entry_id,name) VALUES ($1,$2) RETURNING id`)).
		WithArgs(int64(11), "a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(102)))
	mock.ExpectCommit()

	e := &models.Entry{
		UserID: 1, Title: "Journal Entry", Content: "<p>hi</p>", PrimaryMood: "🙂",
		EntryDate: now, CreatedAt: now, UpdatedAt: now,
		Tags: []models.Tag{{Name: "a"}, {Name: "a"}},
	}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != 11 || e.Tags[0].ID != 101 || e.Tags[1].EntryID != 11 {
		t.Errorf("ids not propagated: %+v", e)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateEntry_TagFailureRollsBack(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO journal_entries`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tags`)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	e := &models.Entry{UserID: 1, Tags: []models.Tag{{Name: "x"}}}
	if err := repo.Create(context.Background(), e); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateEntry_ReplacesTags(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE journal_entries SET content = $1, primary_mood = $2, entry_date = $3, updated_at = $4 WHERE id = $5 AND user_id = $6`)).
		WithArgs("<p>new</p>", "😢", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(11), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags WHERE entry_id = $1`)).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tags`)).
		WithArgs(int64(11), "c").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(103)))
	mock.ExpectCommit()

	now := time.Now()
	e := &models.Entry{
		ID: 11, UserID: 1, Content: "<p>new</p>", PrimaryMood: "😢",
		EntryDate: now, UpdatedAt: now, Tags: []models.Tag{{Name: "c"}},
	}
	if err := repo.Update(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateEntry_NotFound(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE journal_entries`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Entry{ID: 99, UserID: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM journal_entries WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(11), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags WHERE entry_id = $1`)).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM journal_entries WHERE id = $1`)).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.Delete(context.Background(), 1, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Errorf("expected entry to be deleted")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteEntry_Missing(t *testing.T) {
	repo, mock, cleanup := setupEntryMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM journal_entries`)).
		WithArgs(int64(12), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	ok, err := repo.Delete(context.Background(), 1, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("expected nothing to be deleted")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

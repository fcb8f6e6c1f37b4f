package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/daybook/internal/apperr"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/repository"
	"github.com/atinyakov/daybook/internal/session"
	"go.uber.org/zap"
)

const (
	MsgEntrySaved   = "Entry saved successfully!"
	MsgEntryUpdated = "Entry updated successfully!"
	MsgEntryDeleted = "Entry deleted"

	msgEmptyContent  = "Please write something!"
	msgAlreadyToday  = "You have already entered today's journal. Please edit it or wait till tomorrow."
	msgEntryNotFound = "Entry not found!"

	// emptyEditor is what the editor produces when nothing was typed.
	emptyEditor = "<p><br></p>"
)

// JournalService owns the entry lifecycle for a single user at a time.
type JournalService struct {
	entries  EntryRepository
	sessions Sessions
	log      *zap.Logger
	now      Clock
}

func NewJournalService(entries EntryRepository, sessions Sessions, log *zap.Logger, now Clock) *JournalService {
	if now == nil {
		now = ClockIn(time.Local)
	}
	return &JournalService{entries: entries, sessions: sessions, log: log, now: now}
}

// LoggedUserID resolves the user id held by the session token.
func (s *JournalService) LoggedUserID(ctx context.Context, token string) (int64, bool) {
	v, err := s.sessions.Value(ctx, token, session.ItemUserID)
	if err != nil {
		s.log.Warn("session lookup failed", zap.Error(err))
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ListEntries returns every entry of the user, newest first.
func (s *JournalService) ListEntries(ctx context.Context, userID int64) ([]models.Entry, error) {
	entries, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError(s.log, "failed to list entries", err)
	}
	return entries, nil
}

// GetEntry returns the entry or nil when it does not exist for this user.
func (s *JournalService) GetEntry(ctx context.Context, entryID, userID int64) (*models.Entry, error) {
	e, err := s.entries.FindByID(ctx, userID, entryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(s.log, "failed to load entry", err)
	}
	return e, nil
}

// SaveEntry creates an entry dated now. Any number of entries per day is allowed.
func (s *JournalService) SaveEntry(ctx context.Context, userID int64, content, mood string, tags []string) (*models.Entry, error) {
	if blankContent(content) {
		return nil, apperr.Validation(msgEmptyContent)
	}
	return s.create(ctx, userID, content, mood, tags)
}

// SaveEntryOncePerDay creates an entry unless the user already has one dated today.
func (s *JournalService) SaveEntryOncePerDay(ctx context.Context, userID int64, content, mood string, tags []string) (*models.Entry, error) {
	if blankContent(content) {
		return nil, apperr.Validation(msgEmptyContent)
	}

	dates, err := s.entries.EntryDates(ctx, userID)
	if err != nil {
		return nil, storageError(s.log, "failed to load entry dates", err)
	}

	today := s.now()
	for _, d := range dates {
		if sameDay(d.In(today.Location()), today) {
			return nil, apperr.Conflict(msgAlreadyToday)
		}
	}

	return s.create(ctx, userID, content, mood, tags)
}

func (s *JournalService) create(ctx context.Context, userID int64, content, mood string, tags []string) (*models.Entry, error) {
	now := s.now()
	e := &models.Entry{
		UserID:      userID,
		Title:       models.DefaultTitle,
		Content:     content,
		PrimaryMood: moodOrDefault(mood),
		EntryDate:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        newTags(tags),
	}

	if err := s.entries.Create(ctx, e); err != nil {
		return nil, storageError(s.log, "failed to save entry", err)
	}
	return e, nil
}

// UpdateEntry replaces content, mood and tags and moves the entry to now.
// A missing entry is reported without touching storage.
func (s *JournalService) UpdateEntry(ctx context.Context, entryID, userID int64, content, mood string, tags []string) (*models.Entry, error) {
	e, err := s.entries.FindByID(ctx, userID, entryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(msgEntryNotFound)
	}
	if err != nil {
		return nil, storageError(s.log, "failed to load entry", err)
	}

	now := s.now()
	e.Content = content
	e.PrimaryMood = moodOrDefault(mood)
	e.EntryDate = now
	e.UpdatedAt = now
	e.Tags = newTags(tags)

	if err := s.entries.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgEntryNotFound)
		}
		return nil, storageError(s.log, "failed to update entry", err)
	}
	return e, nil
}

// DeleteEntry removes the entry and its tags. Deleting a missing entry is not an error.
func (s *JournalService) DeleteEntry(ctx context.Context, entryID, userID int64) error {
	deleted, err := s.entries.Delete(ctx, userID, entryID)
	if err != nil {
		return storageError(s.log, "failed to delete entry", err)
	}
	if deleted {
		s.log.Debug("entry deleted", zap.Int64("entry_id", entryID), zap.Int64("user_id", userID))
	}
	return nil
}

func blankContent(content string) bool {
	return strings.TrimSpace(content) == "" || content == emptyEditor
}

func moodOrDefault(mood string) string {
	if strings.TrimSpace(mood) == "" {
		return models.DefaultMood
	}
	return mood
}

// newTags makes one tag per name, keeping duplicates.
func newTags(names []string) []models.Tag {
	tags := make([]models.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, models.Tag{Name: n})
	}
	return tags
}

package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/daybook/internal/apperr"
	"github.com/atinyakov/daybook/internal/models"
	"go.uber.org/zap"
)

const (
	titleAll = "All Journals"

	dayLayout   = "January 02, 2006"
	shortLayout = "Jan 02"
	rangeLayout = "Jan 02, 2006"
	fileLayout  = "2006-01-02"

	msgRangeOrder = "End date must not be before start date"
	msgRender     = "Could not generate the PDF. Please try again."
)

// ErrDelivery wraps every failure of the file delivery bridge.
var ErrDelivery = errors.New("download failed")

// Renderer turns entries into a PDF.
type Renderer interface {
	Render(username string, entries []models.Entry, title string) ([]byte, error)
}

// Deliverer hands a base64 encoded file to whoever asked for it.
type Deliverer interface {
	Deliver(ctx context.Context, base64Data, fileName string) error
}

// Document is a rendered export.
type Document struct {
	FileName string
	Title    string
	Data     []byte
}

// ExportService builds PDF exports of a user's entries.
type ExportService struct {
	users    UserRepository
	entries  EntryRepository
	renderer Renderer
	log      *zap.Logger
	now      Clock
}

func NewExportService(users UserRepository, entries EntryRepository, renderer Renderer, log *zap.Logger, now Clock) *ExportService {
	if now == nil {
		now = ClockIn(time.Local)
	}
	return &ExportService{users: users, entries: entries, renderer: renderer, log: log, now: now}
}

// ExportAll renders every entry. No entries still produces a document with a placeholder line.
func (s *ExportService) ExportAll(ctx context.Context, userID int64) (*Document, error) {
	u, entries, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.render(u, entries, titleAll, "journals-all.pdf")
}

// ExportByDate renders the entries dated on the calendar day of date.
func (s *ExportService) ExportByDate(ctx context.Context, userID int64, date time.Time) (*Document, error) {
	u, entries, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	day := startOfDay(date.In(s.location()))
	picked := between(entries, day, nextDay(day))
	if len(picked) == 0 {
		return nil, apperr.NotFound("No entries found for " + day.Format(dayLayout))
	}

	return s.render(u, picked,
		"Journals for "+day.Format(dayLayout),
		fmt.Sprintf("journals-%s.pdf", day.Format(fileLayout)))
}

// ExportByDateRange renders entries from the start of start through the end of end.
func (s *ExportService) ExportByDateRange(ctx context.Context, userID int64, start, end time.Time) (*Document, error) {
	from := startOfDay(start.In(s.location()))
	to := startOfDay(end.In(s.location()))
	if to.Before(from) {
		return nil, apperr.Validation(msgRangeOrder)
	}

	u, entries, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	picked := between(entries, from, nextDay(to))
	if len(picked) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("No entries found for %s - %s",
			from.Format(shortLayout), to.Format(rangeLayout)))
	}

	return s.render(u, picked,
		fmt.Sprintf("Journals from %s to %s", from.Format(shortLayout), to.Format(rangeLayout)),
		fmt.Sprintf("journals-%s_%s.pdf", from.Format(fileLayout), to.Format(fileLayout)))
}

func (s *ExportService) location() *time.Location {
	return s.now().Location()
}

func (s *ExportService) load(ctx context.Context, userID int64) (*models.User, []models.Entry, error) {
	u, err := findUser(ctx, s.users, s.log, userID)
	if err != nil {
		return nil, nil, err
	}

	entries, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, storageError(s.log, "failed to load entries for export", err)
	}
	return u, entries, nil
}

func (s *ExportService) render(u *models.User, entries []models.Entry, title, fileName string) (*Document, error) {
	data, err := s.renderer.Render(u.Username, entries, title)
	if err != nil {
		s.log.Error("failed to render pdf", zap.String("title", title), zap.Error(err))
		return nil, &apperr.Error{Kind: apperr.KindInternal, Message: msgRender, Err: err}
	}
	return &Document{FileName: fileName, Title: title, Data: data}, nil
}

// between keeps entries with from <= EntryDate < to, preserving order.
func between(entries []models.Entry, from, to time.Time) []models.Entry {
	var picked []models.Entry
	for _, e := range entries {
		if !e.EntryDate.Before(from) && e.EntryDate.Before(to) {
			picked = append(picked, e)
		}
	}
	return picked
}

// DeliverFile base64 encodes data and passes it to d. Failures are returned
// wrapped in ErrDelivery.
func DeliverFile(ctx context.Context, d Deliverer, data []byte, fileName string) error {
	if err := d.Deliver(ctx, base64.StdEncoding.EncodeToString(data), fileName); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}

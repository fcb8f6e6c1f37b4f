package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/atinyakov/daybook/internal/apperr"
	"github.com/atinyakov/daybook/internal/middleware"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/service"
	"github.com/go-chi/chi/v5"
)

// JournalService defines the entry operations required by EntryHandler.
type JournalService interface {
	ListEntries(ctx context.Context, userID int64) ([]models.Entry, error)
	GetEntry(ctx context.Context, entryID, userID int64) (*models.Entry, error)
	SaveEntry(ctx context.Context, userID int64, content, mood string, tags []string) (*models.Entry, error)
	SaveEntryOncePerDay(ctx context.Context, userID int64, content, mood string, tags []string) (*models.Entry, error)
	UpdateEntry(ctx context.Context, entryID, userID int64, content, mood string, tags []string) (*models.Entry, error)
	DeleteEntry(ctx context.Context, entryID, userID int64) error
}

// EntryHandler serves the journal entry endpoints. All routes require a session.
type EntryHandler struct {
	JournalService JournalService
}

// EntryRequest is the JSON payload for creating or editing an entry.
type EntryRequest struct {
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.JournalService.ListEntries(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	writeOK(w, http.StatusOK, "", entries)
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	e, err := h.JournalService.GetEntry(r.Context(), id, middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if e == nil {
		writeError(w, apperr.NotFound("Entry not found!"))
		return
	}
	writeOK(w, http.StatusOK, "", e)
}

// Create saves a new entry; several entries per day are allowed.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.JournalService.SaveEntry)
}

// CreateToday saves the entry of the day and refuses a second one.
func (h *EntryHandler) CreateToday(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.JournalService.SaveEntryOncePerDay)
}

type saveFunc func(ctx context.Context, userID int64, content, mood string, tags []string) (*models.Entry, error)

func (h *EntryHandler) create(w http.ResponseWriter, r *http.Request, save saveFunc) {
	var req EntryRequest
	if !decode(w, r, &req) {
		return
	}

	e, err := save(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.Content, req.Mood, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, service.MsgEntrySaved, e)
}

func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	var req EntryRequest
	if !decode(w, r, &req) {
		return
	}

	e, err := h.JournalService.UpdateEntry(r.Context(), id, middleware.GetUserIDFromContext(r.Context()), req.Content, req.Mood, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgEntryUpdated, e)
}

// Delete always succeeds for a missing entry.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.JournalService.DeleteEntry(r.Context(), id, middleware.GetUserIDFromContext(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgEntryDeleted, nil)
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, apperr.Validation("invalid entry id"))
		return 0, false
	}
	return id, true
}

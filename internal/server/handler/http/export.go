package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atinyakov/daybook/internal/apperr"
	"github.com/atinyakov/daybook/internal/middleware"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/service"
	"go.uber.org/zap"
)

// StatsService defines the statistics operation used by StatsHandler.
type StatsService interface {
	GetUserStats(ctx context.Context, userID int64) models.Stats
}

// StatsHandler serves GET /api/stats.
type StatsHandler struct {
	StatsService StatsService
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, "", h.StatsService.GetUserStats(r.Context(), middleware.GetUserIDFromContext(r.Context())))
}

// ExportService defines the PDF export operations used by ExportHandler.
type ExportService interface {
	ExportAll(ctx context.Context, userID int64) (*service.Document, error)
	ExportByDate(ctx context.Context, userID int64, date time.Time) (*service.Document, error)
	ExportByDateRange(ctx context.Context, userID int64, start, end time.Time) (*service.Document, error)
}

// ExportHandler serves GET /api/export.
//
// Without query parameters every entry is exported; ?date=YYYY-MM-DD picks a
// single day and ?from=…&to=… an inclusive range. Dates are read in Location.
type ExportHandler struct {
	ExportService ExportService
	Location      *time.Location
	Logger        *zap.Logger
}

const dateParam = "2006-01-02"

func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserIDFromContext(ctx)
	q := r.URL.Query()

	var (
		doc *service.Document
		err error
	)
	switch {
	case q.Get("date") != "":
		var day time.Time
		if day, err = h.parseDate("date", q.Get("date")); err == nil {
			doc, err = h.ExportService.ExportByDate(ctx, userID, day)
		}
	case q.Get("from") != "" || q.Get("to") != "":
		var from, to time.Time
		if from, err = h.parseDate("from", q.Get("from")); err == nil {
			if to, err = h.parseDate("to", q.Get("to")); err == nil {
				doc, err = h.ExportService.ExportByDateRange(ctx, userID, from, to)
			}
		}
	default:
		doc, err = h.ExportService.ExportAll(ctx, userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/pdf") {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
		_, _ = w.Write(doc.Data)
		return
	}

	if err := service.DeliverFile(ctx, jsonDeliverer{w: w, title: doc.Title}, doc.Data, doc.FileName); err != nil {
		h.logger().Error("pdf delivery failed", zap.String("file", doc.FileName), zap.Error(err))
		writeError(w, err)
	}
}

func (h *ExportHandler) parseDate(name, value string) (time.Time, error) {
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateParam, value, loc)
	if err != nil {
		return time.Time{}, apperr.Validation(fmt.Sprintf("%s must be a date like 2024-01-31", name))
	}
	return t, nil
}

func (h *ExportHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// ExportPayload carries a rendered document inside the JSON envelope.
type ExportPayload struct {
	FileName string `json:"file_name"`
	Title    string `json:"title"`
	// Base64 is the standard base64 encoding of the PDF.
	Base64 string `json:"base64"`
}

// jsonDeliverer hands the encoded file to the client in a JSON response.
type jsonDeliverer struct {
	w     http.ResponseWriter
	title string
}

func (d jsonDeliverer) Deliver(ctx context.Context, base64Data, fileName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	writeOK(d.w, http.StatusOK, "PDF generated", ExportPayload{FileName: fileName, Title: d.title, Base64: base64Data})
	return nil
}

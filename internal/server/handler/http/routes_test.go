package http

import (
	"net/http"
	"testing"

	"github.com/atinyakov/daybook/internal/middleware"
	"go.uber.org/zap"
)

func TestRouter_Healthz(t *testing.T) {
	s := newTestServer()
	rec := s.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	s := newTestServer()
	req := newRequest(http.MethodOptions, "/api/entries", "")
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := serve(s.handler, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}

	req = newRequest(http.MethodOptions, "/api/entries", "")
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = serve(s.handler, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q", got)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	s := newTestServer()
	s.handler = NewRouter(Handlers{
		Auth:    &AuthHandler{AuthService: s.auth},
		Entries: &EntryHandler{JournalService: s.journal},
		Stats:   &StatsHandler{StatsService: s.stats},
		Export:  &ExportHandler{ExportService: s.export},
	}, resolverFunc(nil), zap.NewNop(), RouterOptions{Limiter: middleware.NewRateLimiter(0.001, 1)})

	if rec := s.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d; want 429", rec.Code)
	}
}

package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/service"
	"go.uber.org/zap"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	loginRes    *service.LoginResult
	loginErr    error
	loggedIn    bool
	logoutErr   error
	registerErr error
	user        *models.User
	userErr     error
	renameErr   error
	pinErr      error

	gotToken string
	gotName  string
}

func (f *fakeAuthService) Login(ctx context.Context, username, pin string) (*service.LoginResult, error) {
	return f.loginRes, f.loginErr
}
func (f *fakeAuthService) IsLoggedIn(ctx context.Context, token string) bool {
	f.gotToken = token
	return f.loggedIn
}
func (f *fakeAuthService) Logout(ctx context.Context, token string) error {
	f.gotToken = token
	return f.logoutErr
}
func (f *fakeAuthService) Register(ctx context.Context, username, pin string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: 1, Username: username, Pin: pin}, nil
}
func (f *fakeAuthService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return f.user, f.userErr
}
func (f *fakeAuthService) UpdateUsername(ctx context.Context, id int64, token, newUsername string) error {
	f.gotToken, f.gotName = token, newUsername
	return f.renameErr
}
func (f *fakeAuthService) UpdatePin(ctx context.Context, id int64, currentPin, newPin string) error {
	return f.pinErr
}

// fakeJournalService implements JournalService for testing.
type fakeJournalService struct {
	entries  []models.Entry
	entry    *models.Entry
	err      error
	onceErr  error
	gotID    int64
	gotUser  int64
	gotTags  []string
	deleted  bool
	usedOnce bool
}

func (f *fakeJournalService) ListEntries(ctx context.Context, userID int64) ([]models.Entry, error) {
	f.gotUser = userID
	return f.entries, f.err
}
func (f *fakeJournalService) GetEntry(ctx context.Context, entryID, userID int64) (*models.Entry, error) {
	f.gotID, f.gotUser = entryID, userID
	return f.entry, f.err
}
func (f *fakeJournalService) SaveEntry(ctx context.Context, userID int64, content, mood string, tags []string) (*models.Entry, error) {
	f.gotUser, f.gotTags = userID, tags
	if f.err != nil {
		return nil, f.err
	}
	return &models.Entry{ID: 9, UserID: userID, Content: content, PrimaryMood: mood}, nil
}
func (f *fakeJournalService) SaveEntryOncePerDay(ctx context.Context, userID int64, content, mood string, tags []string) (*models.Entry, error) {
	f.usedOnce = true
	if f.onceErr != nil {
		return nil, f.onceErr
	}
	return f.SaveEntry(ctx, userID, content, mood, tags)
}
func (f *fakeJournalService) UpdateEntry(ctx context.Context, entryID, userID int64, content, mood string, tags []string) (*models.Entry, error) {
	f.gotID, f.gotUser = entryID, userID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Entry{ID: entryID, UserID: userID, Content: content}, nil
}
func (f *fakeJournalService) DeleteEntry(ctx context.Context, entryID, userID int64) error {
	f.gotID, f.gotUser, f.deleted = entryID, userID, true
	return f.err
}

type fakeStatsService struct{ stats models.Stats }

func (f *fakeStatsService) GetUserStats(ctx context.Context, userID int64) models.Stats {
	return f.stats
}

// fakeExportService implements ExportService for testing.
type fakeExportService struct {
	doc      *service.Document
	err      error
	called   string
	gotStart time.Time
	gotEnd   time.Time
}

func (f *fakeExportService) ExportAll(ctx context.Context, userID int64) (*service.Document, error) {
	f.called = "all"
	return f.doc, f.err
}
func (f *fakeExportService) ExportByDate(ctx context.Context, userID int64, date time.Time) (*service.Document, error) {
	f.called, f.gotStart = "date", date
	return f.doc, f.err
}
func (f *fakeExportService) ExportByDateRange(ctx context.Context, userID int64, start, end time.Time) (*service.Document, error) {
	f.called, f.gotStart, f.gotEnd = "range", start, end
	return f.doc, f.err
}

type resolverFunc func(ctx context.Context, token string) (int64, bool)

func (f resolverFunc) LoggedUserID(ctx context.Context, token string) (int64, bool) {
	return f(ctx, token)
}

type testServer struct {
	auth    *fakeAuthService
	journal *fakeJournalService
	stats   *fakeStatsService
	export  *fakeExportService
	handler http.Handler
}

func newTestServer() *testServer {
	s := &testServer{
		auth:    &fakeAuthService{},
		journal: &fakeJournalService{},
		stats:   &fakeStatsService{},
		export:  &fakeExportService{},
	}
	resolver := resolverFunc(func(ctx context.Context, token string) (int64, bool) {
		return 7, token == "tok"
	})
	s.handler = NewRouter(Handlers{
		Auth:    &AuthHandler{AuthService: s.auth},
		Entries: &EntryHandler{JournalService: s.journal},
		Stats:   &StatsHandler{StatsService: s.stats},
		Export:  &ExportHandler{ExportService: s.export, Location: time.UTC, Logger: zap.NewNop()},
	}, resolver, zap.NewNop(), RouterOptions{CORSOrigins: []string{"http://localhost:3000"}})
	return s
}

// do sends a request; a non-empty body is sent as JSON and token as a bearer token.
func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// envelope decodes a JSON reply; data is left raw for the caller.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return env
}

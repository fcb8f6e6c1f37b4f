// Package client talks to the journal server's JSON API on behalf of the
// command-line client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/atinyakov/daybook/internal/models"
)

// TokenKey is the item under which the session token is kept in a TokenStore.
const TokenKey = "token"

// ErrNotLoggedIn is returned by calls that need a session when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in, run the login command first")

// TokenStore keeps the session token between invocations.
type TokenStore interface {
	SetItem(ctx context.Context, key, value string) error
	GetItem(ctx context.Context, key string) (string, error)
	RemoveItem(ctx context.Context, key string) error
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %s", http.StatusText(e.Status))
	}
	return e.Message
}

// Client is a journal API client.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// New returns a Client for baseURL. A nil httpClient gets a 10s timeout client.
func New(baseURL string, httpClient *http.Client, tokens TokenStore) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient, tokens: tokens}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do sends body as JSON and decodes the envelope's data into out when out is non-nil.
// It returns the envelope message.
func (c *Client) do(ctx context.Context, method, path string, body, out any, auth bool) (string, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.GetItem(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if auth && token == "" {
		return "", ErrNotLoggedIn
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return "", &APIError{Status: resp.StatusCode}
		}
		return "", fmt.Errorf("invalid response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return "", &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("invalid response: %w", err)
		}
	}
	return env.Message, nil
}

// Register creates an account without logging in.
func (c *Client) Register(ctx context.Context, username, pin string) (string, error) {
	return c.do(ctx, http.MethodPost, "/api/register", credentials{username, pin}, nil, false)
}

type credentials struct {
	Username string `json:"username"`
	Pin      string `json:"pin"`
}

// Login authenticates and stores the returned session token.
func (c *Client) Login(ctx context.Context, username, pin string) (string, error) {
	var res struct {
		Token string `json:"token"`
	}
	msg, err := c.do(ctx, http.MethodPost, "/api/login", credentials{username, pin}, &res, false)
	if err != nil {
		return "", err
	}
	if err := c.tokens.SetItem(ctx, TokenKey, res.Token); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	return msg, nil
}

// Logout ends the server session and forgets the local token.
func (c *Client) Logout(ctx context.Context) (string, error) {
	msg, err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil, false)
	if rmErr := c.tokens.RemoveItem(ctx, TokenKey); rmErr != nil && err == nil {
		err = fmt.Errorf("remove token: %w", rmErr)
	}
	return msg, err
}

// Session reports whether the stored token is still valid.
func (c *Client) Session(ctx context.Context) (bool, error) {
	var res struct {
		LoggedIn bool `json:"logged_in"`
	}
	_, err := c.do(ctx, http.MethodGet, "/api/session", nil, &res, false)
	return res.LoggedIn, err
}

// EntryInput is the editable part of an entry.
type EntryInput struct {
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
}

func (c *Client) ListEntries(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	_, err := c.do(ctx, http.MethodGet, "/api/entries", nil, &entries, true)
	return entries, err
}

func (c *Client) GetEntry(ctx context.Context, id int64) (*models.Entry, error) {
	var e models.Entry
	if _, err := c.do(ctx, http.MethodGet, entryPath(id), nil, &e, true); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEntry saves a new entry. With today set the server refuses a second
// entry on the same day.
func (c *Client) CreateEntry(ctx context.Context, in EntryInput, today bool) (*models.Entry, string, error) {
	path := "/api/entries"
	if today {
		path += "/today"
	}
	var e models.Entry
	msg, err := c.do(ctx, http.MethodPost, path, in, &e, true)
	if err != nil {
		return nil, "", err
	}
	return &e, msg, nil
}

func (c *Client) UpdateEntry(ctx context.Context, id int64, in EntryInput) (*models.Entry, string, error) {
	var e models.Entry
	msg, err := c.do(ctx, http.MethodPut, entryPath(id), in, &e, true)
	if err != nil {
		return nil, "", err
	}
	return &e, msg, nil
}

func (c *Client) DeleteEntry(ctx context.Context, id int64) (string, error) {
	return c.do(ctx, http.MethodDelete, entryPath(id), nil, nil, true)
}

func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	var s models.Stats
	_, err := c.do(ctx, http.MethodGet, "/api/stats", nil, &s, true)
	return s, err
}

func (c *Client) Account(ctx context.Context) (*models.User, error) {
	var u models.User
	if _, err := c.do(ctx, http.MethodGet, "/api/account", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUsername(ctx context.Context, username string) (string, error) {
	body := map[string]string{"username": username}
	return c.do(ctx, http.MethodPut, "/api/account/username", body, nil, true)
}

func (c *Client) UpdatePin(ctx context.Context, currentPin, newPin string) (string, error) {
	body := map[string]string{"current_pin": currentPin, "new_pin": newPin}
	return c.do(ctx, http.MethodPut, "/api/account/pin", body, nil, true)
}

// ExportRange selects what Export renders. The zero value exports everything;
// Date alone picks one day; From and To an inclusive range.
type ExportRange struct {
	Date     string
	From, To string
}

func (r ExportRange) query() string {
	v := url.Values{}
	switch {
	case r.Date != "":
		v.Set("date", r.Date)
	case r.From != "" || r.To != "":
		v.Set("from", r.From)
		v.Set("to", r.To)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// Export is a rendered document as returned by the server.
type Export struct {
	FileName string `json:"file_name"`
	Title    string `json:"title"`
	Base64   string `json:"base64"`
}

func (c *Client) Export(ctx context.Context, r ExportRange) (*Export, error) {
	var e Export
	if _, err := c.do(ctx, http.MethodGet, "/api/export"+r.query(), nil, &e, true); err != nil {
		return nil, err
	}
	return &e, nil
}

func entryPath(id int64) string {
	return "/api/entries/" + strconv.FormatInt(id, 10)
}

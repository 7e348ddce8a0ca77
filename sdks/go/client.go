package quillpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client is the Quillpress SDK client. It communicates with the platform's
// REST API and keeps a single bearer token that is dropped the moment the
// server rejects it.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client

	mu    sync.RWMutex
	token string

	onSessionEnd func(reason string)

	logger *slog.Logger
}

// NewClient creates a new Quillpress SDK client.
// It reads configuration from QUILLPRESS_* environment variables by default.
// Options can be used to override the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: envOrDefault("QUILLPRESS_BASE_URL", "http://localhost:3000/api/v1"),
		token:   os.Getenv("QUILLPRESS_TOKEN"),
		timeout: parseDurationEnv("QUILLPRESS_TIMEOUT", 30*time.Second),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

// Login authenticates with the platform. On success the bearer token from
// the response's Authorization header replaces any previous token.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}

	resp, _, err := c.doRaw(ctx, http.MethodPost, "/user/login", body)
	if err != nil {
		return err
	}

	token := bearerToken(resp.Header.Get("Authorization"))
	if token == "" {
		return &QuillpressError{Code: "NO_TOKEN", Err: ErrNoToken}
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// Logout drops the stored token. It does not contact the server; the
// platform invalidates sessions only through token expiry.
func (c *Client) Logout() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Token returns the bearer token currently in use, or "" when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Profile fetches the authenticated account's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var envelope struct {
		Data Profile `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/profile", nil, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// Books fetches one page of the catalog listing.
func (c *Client) Books(ctx context.Context, page, limit int) (*BookPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var result BookPage
	if err := c.doJSON(ctx, http.MethodGet, "/books", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Book fetches a single book by id, including its chapter listing.
func (c *Client) Book(ctx context.Context, bookID string) (*Book, error) {
	if bookID == "" {
		return nil, fmt.Errorf("book id must not be empty")
	}
	var envelope struct {
		Data Book `json:"data"`
	}
	path := "/books/" + url.PathEscape(bookID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// Chapters fetches a book's chapters sorted by chapter number.
func (c *Client) Chapters(ctx context.Context, bookID string) ([]Chapter, error) {
	book, err := c.Book(ctx, bookID)
	if err != nil {
		return nil, err
	}
	chapters := append([]Chapter(nil), book.Chapters...)
	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].ChapterNo < chapters[j].ChapterNo
	})
	return chapters, nil
}

// Chapter fetches a single chapter, including its content.
func (c *Client) Chapter(ctx context.Context, bookID, chapterID string) (*Chapter, error) {
	if bookID == "" || chapterID == "" {
		return nil, fmt.Errorf("book and chapter ids must not be empty")
	}
	var envelope struct {
		Data Chapter `json:"data"`
	}
	path := "/books/" + url.PathEscape(bookID) + "/chapters/" + url.PathEscape(chapterID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// BuyCoins starts a coin purchase and returns the payment link the buyer
// must open to complete the checkout.
func (c *Client) BuyCoins(ctx context.Context, coins int) (string, error) {
	body := map[string]int{"coins": coins}
	var result struct {
		Link string `json:"link"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/payments/buy-coins", nil, body, &result); err != nil {
		return "", err
	}
	if result.Link == "" {
		return "", &QuillpressError{Code: "NO_PAYMENT_LINK", Err: fmt.Errorf("response carried no payment link")}
	}
	return result.Link, nil
}

// doJSON performs a request and unmarshals a 2xx response body into result.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, result any) error {
	_, respBody, err := c.doRaw(ctx, method, pathWithQuery(path, query), body)
	if err != nil {
		return err
	}
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// doRaw performs an HTTP request to the Quillpress server. Non-2xx statuses
// are mapped to errors; 401 and 403 additionally drop the stored token and
// fire the session-end callback.
func (c *Client) doRaw(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	fullURL := strings.TrimRight(c.baseURL, "/") + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized:
		msg := errorMessage(respBody)
		c.endSession("expired")
		return nil, nil, &SessionExpiredError{Message: msg}

	case httpResp.StatusCode == http.StatusForbidden:
		msg := errorMessage(respBody)
		c.endSession("forbidden")
		return nil, nil, &ForbiddenError{Message: msg}

	case httpResp.StatusCode < 200 || httpResp.StatusCode >= 300:
		return nil, nil, &QuillpressError{
			Code: fmt.Sprintf("HTTP_%d", httpResp.StatusCode),
			Err:  fmt.Errorf("server returned %d: %s", httpResp.StatusCode, errorMessage(respBody)),
		}
	}

	return httpResp, respBody, nil
}

// endSession drops the token and fires the callback, once per rejection.
func (c *Client) endSession(reason string) {
	c.mu.Lock()
	hadToken := c.token != ""
	c.token = ""
	c.mu.Unlock()

	if hadToken && c.onSessionEnd != nil {
		c.onSessionEnd(reason)
	}
}

// errorMessage extracts the platform's error payload, which uses either a
// "message" or an "error" field.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		ErrText string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.ErrText != "" {
			return payload.ErrText
		}
	}
	return strings.TrimSpace(string(body))
}

// bearerToken extracts the token from an "Authorization: Bearer <jwt>" value.
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func pathWithQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// Helper functions for env var parsing.

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	// Try parsing as seconds (integer).
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	// Try parsing as duration string.
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}

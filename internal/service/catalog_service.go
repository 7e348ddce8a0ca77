package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/quillpress/quillctl/internal/adapter/outbound/rest"
	"github.com/quillpress/quillctl/internal/observe"
)

// Book is a catalog entry as the platform returns it.
type Book struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	BookImage   string    `json:"bookImage"`
	Category    string    `json:"category"`
	Country     string    `json:"country"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	Views       int       `json:"views"`
	LikeCount   int       `json:"likeCount"`
	Chapters    []Chapter `json:"chapters"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Chapter is one chapter of a book. Content is only populated by the
// single-chapter endpoint.
type Chapter struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	ChapterNo int       `json:"chapterNo"`
	Content   string    `json:"content,omitempty"`
	IsLocked  bool      `json:"isLocked"`
	CoinCost  int       `json:"coinCost"`
	CreatedAt time.Time `json:"createdAt"`
}

// Pagination mirrors the platform's list envelope.
type Pagination struct {
	Total       int `json:"total"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

// BookPage is one page of the catalog listing.
type BookPage struct {
	Books      []Book
	Pagination Pagination
}

// DefaultPageLimit matches the admin UI's page size.
const DefaultPageLimit = 10

// listFanInWorkers bounds the concurrent page fetches in ListAllBooks.
const listFanInWorkers = 4

// CatalogOptions configures a CatalogService.
type CatalogOptions struct {
	// Retries is how many attempts each idempotent GET gets. Zero means 3.
	Retries int
	// CacheTTL bounds how long a GET response is served from cache.
	// Zero means 30s; negative disables the cache.
	CacheTTL time.Duration
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Metrics, when set, records cache hit/miss counts.
	Metrics *observe.Metrics
}

// CatalogService reads books and chapters from the platform.
type CatalogService struct {
	api      *rest.Facade
	logger   *slog.Logger
	metrics  *observe.Metrics
	attempts uint
	cacheTTL time.Duration

	cacheMu sync.Mutex
	cache   map[uint64]cacheEntry
}

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// NewCatalogService creates a CatalogService on top of the shared facade.
func NewCatalogService(api *rest.Facade, opts CatalogOptions) *CatalogService {
	attempts := opts.Retries
	if attempts <= 0 {
		attempts = 3
	}
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		api:      api,
		logger:   logger,
		metrics:  opts.Metrics,
		attempts: uint(attempts),
		cacheTTL: ttl,
		cache:    make(map[uint64]cacheEntry),
	}
}

// ListBooks returns one page of the catalog. Page numbering starts at 1.
func (s *CatalogService) ListBooks(ctx context.Context, page, limit int) (*BookPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var envelope struct {
		Data       []Book     `json:"data"`
		Pagination Pagination `json:"pagination"`
	}
	if err := s.getJSON(ctx, "/books", q, &envelope); err != nil {
		return nil, err
	}
	return &BookPage{Books: envelope.Data, Pagination: envelope.Pagination}, nil
}

// ListAllBooks walks every page of the catalog. The first page establishes
// the page count; the rest are fetched concurrently.
func (s *CatalogService) ListAllBooks(ctx context.Context, limit int) ([]Book, error) {
	first, err := s.ListBooks(ctx, 1, limit)
	if err != nil {
		return nil, err
	}
	totalPages := first.Pagination.TotalPages
	if totalPages <= 1 {
		return first.Books, nil
	}

	pages := make([][]Book, totalPages+1)
	pages[1] = first.Books

	p := pool.New().
		WithMaxGoroutines(listFanInWorkers).
		WithContext(ctx).
		WithCancelOnError()
	for n := 2; n <= totalPages; n++ {
		p.Go(func(ctx context.Context) error {
			pg, err := s.ListBooks(ctx, n, limit)
			if err != nil {
				return fmt.Errorf("page %d: %w", n, err)
			}
			pages[n] = pg.Books
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	var out []Book
	for _, pg := range pages {
		out = append(out, pg...)
	}
	return out, nil
}

// GetBook returns one book with its chapter listing.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*Book, error) {
	if bookID == "" {
		return nil, errors.New("book id is required")
	}
	var envelope struct {
		Data Book `json:"data"`
	}
	if err := s.getJSON(ctx, "/books/"+url.PathEscape(bookID), nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// ListChapters returns a book's chapters ordered by chapter number.
func (s *CatalogService) ListChapters(ctx context.Context, bookID string) ([]Chapter, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	chapters := append([]Chapter(nil), book.Chapters...)
	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].ChapterNo < chapters[j].ChapterNo
	})
	return chapters, nil
}

// GetChapter returns one chapter with its content.
func (s *CatalogService) GetChapter(ctx context.Context, bookID, chapterID string) (*Chapter, error) {
	if bookID == "" || chapterID == "" {
		return nil, errors.New("book id and chapter id are required")
	}
	path := "/books/" + url.PathEscape(bookID) + "/chapters/" + url.PathEscape(chapterID)
	var envelope struct {
		Data Chapter `json:"data"`
	}
	if err := s.getJSON(ctx, path, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// getJSON performs a cached, retried GET and decodes the body into out.
func (s *CatalogService) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	key := cacheKey(path, q)

	if body, ok := s.cacheGet(key); ok {
		s.countCache("hit")
		return json.Unmarshal(body, out)
	}
	s.countCache("miss")

	var body []byte
	err := retry.Do(
		func() error {
			req, err := s.api.NewRequest(ctx, http.MethodGet, path, q, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := s.api.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				apiErr := &rest.APIError{StatusCode: resp.StatusCode, Message: decodeErrorMessage(resp)}
				if resp.StatusCode < 500 {
					// Auth failures and client errors will not improve on
					// a retry; the response watcher has already seen them.
					return retry.Unrecoverable(apiErr)
				}
				return apiErr
			}

			body, err = readAll(resp)
			return err
		},
		retry.Attempts(s.attempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.Delay(200*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("catalog request retrying", "path", path, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return err
	}

	s.cachePut(key, body)
	return json.Unmarshal(body, out)
}

func cacheKey(path string, q url.Values) uint64 {
	if q == nil {
		return xxhash.Sum64String(path)
	}
	return xxhash.Sum64String(path + "?" + q.Encode())
}

func (s *CatalogService) cacheGet(key uint64) ([]byte, bool) {
	if s.cacheTTL < 0 {
		return nil, false
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	e, ok := s.cache[key]
	if !ok || time.Now().After(e.expires) {
		delete(s.cache, key)
		return nil, false
	}
	return e.body, true
}

func (s *CatalogService) cachePut(key uint64, body []byte) {
	if s.cacheTTL < 0 {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache[key] = cacheEntry{body: body, expires: time.Now().Add(s.cacheTTL)}
}

// InvalidateCache drops all cached responses.
func (s *CatalogService) InvalidateCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache = make(map[uint64]cacheEntry)
}

func (s *CatalogService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.CacheHitsTotal.WithLabelValues(result).Inc()
	}
}

func readAll(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// decodeErrorMessage pulls the message out of a platform error payload.
func decodeErrorMessage(resp *http.Response) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// Package rest provides the shared HTTP client facade for the Quillpress
// admin API. All outbound requests flow through one client whose transport
// applies the default Authorization header and any registered hooks, so a
// header change or a hook registration is visible to every caller at once.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/quillpress/quillctl/internal/observe"
)

// DefaultBaseURL matches the platform's local development API.
const DefaultBaseURL = "http://localhost:3000/api/v1"

// RequestHook runs on every outbound request after the default Authorization
// header is applied. Hooks receive the per-request clone and may mutate it.
type RequestHook func(*http.Request)

// ResponseHook observes every completed round trip. Exactly one of resp and
// err is non-nil. Hooks must not consume the response body.
type ResponseHook func(resp *http.Response, err error)

type hookKind int

const (
	requestHooks hookKind = iota
	responseHooks
)

// Registration is the handle returned when a hook is installed. Remove
// deregisters the hook; a consumer that re-registers across remounts must
// remove its previous handle first so one response never triggers the same
// hook twice.
type Registration struct {
	f    *Facade
	kind hookKind
	id   int
}

// Remove deregisters the hook. Safe to call more than once.
func (r Registration) Remove() {
	if r.f == nil {
		return
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	switch r.kind {
	case requestHooks:
		delete(r.f.reqHooks, r.id)
	case responseHooks:
		delete(r.f.respHooks, r.id)
	}
}

// Options configures a Facade.
type Options struct {
	// BaseURL is the API root. Empty means DefaultBaseURL.
	BaseURL string
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
	// Transport is the underlying RoundTripper. Nil means http.DefaultTransport.
	Transport http.RoundTripper
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Metrics, when set, records request counts and durations.
	Metrics *observe.Metrics
	// Tracer, when set, opens a span per request.
	Tracer trace.Tracer
}

// Facade is the shared HTTP client. It implements session.AuthHeaderSetter.
type Facade struct {
	base    *url.URL
	client  *http.Client
	next    http.RoundTripper
	logger  *slog.Logger
	metrics *observe.Metrics
	tracer  trace.Tracer

	mu         sync.RWMutex
	authHeader string
	reqHooks   map[int]RequestHook
	respHooks  map[int]ResponseHook
	nextID     int
}

// New builds a Facade from opts.
func New(opts Options) (*Facade, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q has no scheme or host", raw)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	next := opts.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("quillctl/rest")
	}

	f := &Facade{
		base:      base,
		next:      next,
		logger:    logger,
		metrics:   opts.Metrics,
		tracer:    tracer,
		reqHooks:  make(map[int]RequestHook),
		respHooks: make(map[int]ResponseHook),
	}
	f.client = &http.Client{Transport: f, Timeout: timeout}
	return f, nil
}

// Client exposes the shared *http.Client for callers that need it directly.
func (f *Facade) Client() *http.Client {
	return f.client
}

// SetDefaultAuthorization installs the bearer token applied to every request
// from now on. Takes effect synchronously.
func (f *Facade) SetDefaultAuthorization(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authHeader = "Bearer " + token
}

// ClearDefaultAuthorization removes the default bearer token.
func (f *Facade) ClearDefaultAuthorization() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authHeader = ""
}

// OnRequest installs a request hook and returns its registration handle.
func (f *Facade) OnRequest(h RequestHook) Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.reqHooks[f.nextID] = h
	return Registration{f: f, kind: requestHooks, id: f.nextID}
}

// OnResponse installs a response hook and returns its registration handle.
func (f *Facade) OnResponse(h ResponseHook) Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.respHooks[f.nextID] = h
	return Registration{f: f, kind: responseHooks, id: f.nextID}
}

// RoundTrip applies, in order: the default Authorization header, request
// hooks, the underlying transport, response hooks. The response or error is
// forwarded to the caller unchanged regardless of what hooks observed.
func (f *Facade) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.RLock()
	auth := f.authHeader
	reqFns := make([]RequestHook, 0, len(f.reqHooks))
	for _, h := range f.reqHooks {
		reqFns = append(reqFns, h)
	}
	respFns := make([]ResponseHook, 0, len(f.respHooks))
	for _, h := range f.respHooks {
		respFns = append(respFns, h)
	}
	f.mu.RUnlock()

	out := req.Clone(req.Context())
	if auth != "" && out.Header.Get("Authorization") == "" {
		out.Header.Set("Authorization", auth)
	}
	for _, h := range reqFns {
		h(out)
	}

	ctx, span := f.tracer.Start(out.Context(), "rest "+out.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", out.Method),
			attribute.String("url.path", out.URL.Path),
		))
	out = out.WithContext(ctx)

	start := time.Now()
	resp, err := f.next.RoundTrip(out)
	elapsed := time.Since(start)

	if f.metrics != nil {
		f.metrics.RequestsTotal.WithLabelValues(out.Method, statusClass(resp, err)).Inc()
		f.metrics.RequestDuration.WithLabelValues(out.Method).Observe(elapsed.Seconds())
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		if resp.StatusCode >= 500 {
			span.SetStatus(codes.Error, resp.Status)
		}
	}
	span.End()

	f.logger.Debug("request completed",
		"method", out.Method, "path", out.URL.Path,
		"status", statusClass(resp, err), "duration", elapsed)

	for _, h := range respFns {
		h(resp, err)
	}
	return resp, err
}

func statusClass(resp *http.Response, err error) string {
	if err != nil {
		return "error"
	}
	return strconv.Itoa(resp.StatusCode/100) + "xx"
}

// APIError is a non-2xx platform response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d", e.StatusCode)
}

// resolve joins path (and optional query) onto the base URL.
func (f *Facade) resolve(path string, query url.Values) string {
	u := *f.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// NewRequest builds a request against the API root. A non-nil body is JSON
// encoded.
func (f *Facade) NewRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, f.resolve(path, query), rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do executes the request through the shared client.
func (f *Facade) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// DoJSON executes a JSON request and decodes a 2xx body into out (when out
// is non-nil). Non-2xx responses drain the body into an *APIError. The
// response is returned either way so callers can read headers.
func (f *Facade) DoJSON(ctx context.Context, method, path string, query url.Values, body, out any) (*http.Response, error) {
	req, err := f.NewRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	resp, err := f.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("decode response body: %w", err)
		}
	}
	return resp, nil
}

// errorMessage pulls the human-readable message out of a platform error
// payload, which uses either {"message": ...} or {"error": ...}.
func errorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

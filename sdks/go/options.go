package quillpress

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL sets the Quillpress API base URL.
// If not set, defaults to the QUILLPRESS_BASE_URL environment variable,
// falling back to http://localhost:3000/api/v1.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithToken sets the bearer token used to authenticate requests.
// If not set, defaults to the QUILLPRESS_TOKEN environment variable.
// A later Login replaces it.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionEndHandler registers a callback invoked once whenever the
// server rejects the current token (HTTP 401 or 403). The client has
// already dropped the token when the callback runs.
func WithSessionEndHandler(fn func(reason string)) Option {
	return func(c *Client) {
		c.onSessionEnd = fn
	}
}

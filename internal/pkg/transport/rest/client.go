// Package rest provides a small GET-only HTTP client for REST surfaces that
// address resources through path segments. It wraps HashiCorp's
// retryablehttp.Client, exposes functional options for timeouts and retry
// behavior, and tags every request with a correlation id header.
package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// ErrUnexpectedStatus indicates the server answered with a non-2xx status.
var ErrUnexpectedStatus = fmt.Errorf("unexpected http status")

// StatusError carries the status code of a non-2xx response. It matches
// ErrUnexpectedStatus through errors.Is, so callers that do not care about
// the code keep working unchanged.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status: %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Client fetches a resource addressed by path segments relative to the
// configured base URL and returns the raw response body.
type Client interface {
	// Get issues a GET for baseURL joined with the escaped path segments.
	// It returns the raw body bytes, or an error on transport failure or a
	// non-2xx response.
	Get(ctx context.Context, segments ...string) ([]byte, error)
}

// config holds internal settings for the client.
type config struct {
	timeout      time.Duration // maximum duration for a single HTTP request
	retryWaitMin time.Duration // minimum delay between transport-level retries
	retryWaitMax time.Duration // maximum delay between transport-level retries
	retryMax     int           // maximum number of transport-level retries
}

// Option defines a functional option for configuring the client.
type Option func(*config)

// WithTimeout sets the maximum duration allowed for a single request.
// Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin sets the minimum delay between retry attempts.
// Default: 1 second.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax sets the maximum delay between retry attempts.
// Default: 5 seconds.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax sets the maximum number of retry attempts for failed
// requests. Default: 2 retries.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}

// client is the default Client implementation backed by retryablehttp.
type client struct {
	baseURL string
	conn    *retryablehttp.Client
}

// Compile-time assertion that client implements the Client interface.
var _ Client = (*client)(nil)

// NewClient creates a Client rooted at baseURL. If no options are given the
// defaults are a 5 second timeout, 2 retries, and retry waits between 1 and
// 5 seconds.
func NewClient(baseURL string, opts ...Option) *client {
	cfg := config{
		timeout:      5 * time.Second,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	conn := retryablehttp.NewClient()
	conn.Logger = nil
	conn.HTTPClient.Timeout = cfg.timeout
	conn.RetryWaitMin = cfg.retryWaitMin
	conn.RetryWaitMax = cfg.retryWaitMax
	conn.RetryMax = cfg.retryMax

	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		conn:    conn,
	}
}

// endpoint joins the base URL with the escaped path segments.
func (c *client) endpoint(segments []string) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(parts, "/")
}

// Get implements the Client interface.
func (c *client) Get(ctx context.Context, segments ...string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(segments), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("X-Request-Id", uuid.NewString())

	res, err := c.conn.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: res.StatusCode}
	}

	return body, nil
}

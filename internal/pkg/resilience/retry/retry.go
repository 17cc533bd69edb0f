// Package retry provides a small retry mechanism for operations that may
// fail temporarily. It wraps the retry-go package from Avast behind a
// simple interface with functional options.
//
// The default policy is a fixed delay between attempts. The upstream this
// service fronts is a single local daemon, so the simple liveness model is
// a short fixed pause and a bounded number of attempts, not exponential
// backoff.
package retry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Retry executes an operation with automatic re-attempts on failure.
type Retry interface {
	// Execute runs the given function with the configured retry policy.
	// It returns nil once the operation succeeds, the combined or last
	// error if all attempts fail, or the context error if ctx is done.
	Execute(ctx context.Context, operation func() error) error
}

// config holds internal settings for the retry mechanism.
type config struct {
	attempts    uint          // maximum number of attempts, including the first
	delay       time.Duration // fixed delay between attempts
	lastErrOnly bool          // whether to return only the last error
}

// Option defines a functional option for configuring the retry mechanism.
type Option func(*config)

// retrier implements the Retry interface using retry-go.
type retrier struct {
	cfg config
}

// Compile-time assertion that retrier implements Retry.
var _ Retry = (*retrier)(nil)

// New creates a Retry with the provided options. Defaults: 3 attempts,
// a fixed 1 second delay, and only the last error returned.
func New(opts ...Option) Retry {
	cfg := config{
		attempts:    3,
		delay:       1 * time.Second,
		lastErrOnly: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &retrier{
		cfg: cfg,
	}
}

// Execute implements the Retry interface.
func (r *retrier) Execute(ctx context.Context, operation func() error) error {
	options := []retry.Option{
		retry.Attempts(r.cfg.attempts),
		retry.Delay(r.cfg.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(r.cfg.lastErrOnly),
		retry.Context(ctx),
	}

	return retry.Do(operation, options...)
}

// WithAttempts sets the maximum number of attempts, including the initial
// one. Default: 3.
func WithAttempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// WithDelay sets the fixed delay between attempts. Default: 1 second.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithLastErrorOnly controls whether only the final attempt's error is
// returned (true, the default) or all attempt errors combined (false).
func WithLastErrorOnly(b bool) Option {
	return func(c *config) {
		c.lastErrOnly = b
	}
}

// Package statspoller drives the two periodic loops: a fast chain-stats tick
// that keeps the block cache aligned with the current tip, and a slower
// market tick that refreshes currencies, offers, and trades once the daemon
// has been reached.
package statspoller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bisq-network/bsqindex/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrAlreadyStarted is returned when Start is called on a running poller.
var ErrAlreadyStarted = errors.New("poller already started")

const (
	defaultStatsInterval  = 20 * time.Second
	defaultMarketInterval = time.Minute
)

// Chain is the block-cache surface the poller drives.
type Chain interface {
	// SyncTip refreshes chain statistics and grows the cache toward the tip.
	SyncTip(ctx context.Context) error

	// Connected reports whether a stats poll has ever succeeded.
	Connected() bool

	// FetchDaoCycles retrieves the governance cycle history.
	FetchDaoCycles(ctx context.Context) error
}

// Markets is the market-data surface the poller drives.
type Markets interface {
	// Refresh pulls fresh currency, offer, and trade snapshots and rebuilds
	// the ticker snapshot.
	Refresh(ctx context.Context) error
}

// TickerFactory builds the tick channel for one loop together with its stop
// function. Tests inject a deterministic implementation.
type TickerFactory func(d time.Duration) (<-chan time.Time, func())

// Service runs the polling loops until closed.
type Service interface {
	// Start launches both loops. It returns ErrAlreadyStarted when called
	// twice without an intervening Close.
	Start(ctx context.Context) error

	// Close stops the loops and waits for them to drain.
	Close()
}

type config struct {
	statsInterval  time.Duration
	marketInterval time.Duration
	newTicker      TickerFactory
}

// Option configures the poller at construction time.
type Option func(*config)

// WithStatsInterval sets the cadence of the chain-stats loop.
// Default: 20 seconds.
func WithStatsInterval(d time.Duration) Option {
	return func(c *config) {
		c.statsInterval = d
	}
}

// WithMarketInterval sets the cadence of the market-refresh loop.
// Default: 1 minute.
func WithMarketInterval(d time.Duration) Option {
	return func(c *config) {
		c.marketInterval = d
	}
}

// WithTickerFactory overrides how tick channels are built. Used by tests.
func WithTickerFactory(f TickerFactory) Option {
	return func(c *config) {
		c.newTicker = f
	}
}

type service struct {
	chain   Chain
	markets Markets

	statsInterval  time.Duration
	marketInterval time.Duration
	newTicker      TickerFactory

	statsPolls      metric.Int64Counter
	marketRefreshes metric.Int64Counter

	daoFetched bool

	mu        sync.Mutex
	closeFunc func()
}

// Compile-time assertion that service implements the Service interface.
var _ Service = (*service)(nil)

// New builds a poller over the given chain and market surfaces.
func New(chain Chain, markets Markets, opts ...Option) (Service, error) {
	cfg := config{
		statsInterval:  defaultStatsInterval,
		marketInterval: defaultMarketInterval,
		newTicker:      stdTicker,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	meter := otel.Meter("statspoller")

	statsPolls, err := meter.Int64Counter("statspoller.stats_polls")
	if err != nil {
		return nil, err
	}

	marketRefreshes, err := meter.Int64Counter("statspoller.market_refreshes")
	if err != nil {
		return nil, err
	}

	return &service{
		chain:           chain,
		markets:         markets,
		statsInterval:   cfg.statsInterval,
		marketInterval:  cfg.marketInterval,
		newTicker:       cfg.newTicker,
		statsPolls:      statsPolls,
		marketRefreshes: marketRefreshes,
	}, nil
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeFunc != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.statsLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.marketLoop(ctx)
	}()

	s.closeFunc = func() {
		cancel()
		wg.Wait()
	}
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeFunc != nil {
		s.closeFunc()
		s.closeFunc = nil
	}
}

// statsLoop polls immediately and then on every tick. A failed poll is
// logged and retried on the next scheduled tick, with no backoff.
func (s *service) statsLoop(ctx context.Context) {
	s.pollStats(ctx)

	ticks, stop := s.newTicker(s.statsInterval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			s.pollStats(ctx)
		}
	}
}

func (s *service) pollStats(ctx context.Context) {
	err := s.chain.SyncTip(ctx)
	s.statsPolls.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	if err != nil {
		logger.Warn(ctx, "stats poll failed", "error", err)
		return
	}

	if !s.daoFetched && s.chain.Connected() {
		if err := s.chain.FetchDaoCycles(ctx); err != nil {
			logger.Warn(ctx, "dao cycle fetch failed", "error", err)
			return
		}
		s.daoFetched = true
	}
}

// marketLoop refreshes market data on every tick, but only once the daemon
// has been reached.
func (s *service) marketLoop(ctx context.Context) {
	ticks, stop := s.newTicker(s.marketInterval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if !s.chain.Connected() {
				continue
			}
			err := s.markets.Refresh(ctx)
			s.marketRefreshes.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
			if err != nil {
				logger.Warn(ctx, "market refresh failed", "error", err)
			}
		}
	}
}

// stdTicker is the wall-clock TickerFactory.
func stdTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

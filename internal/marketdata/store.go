// Package marketdata holds the latest snapshot of currency metadata, open
// offers, and a rolling two-year window of historical trades, partitioned by
// market pair. Read operations project renormalized views; nothing here
// mutates the stored upstream records.
package marketdata

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bisq-network/bsqindex/internal/aggregation"
	"github.com/bisq-network/bsqindex/internal/pkg/logger"
	"github.com/bisq-network/bsqindex/internal/pkg/types"
)

// tradeRetention is how far back trades are kept. Older entries are dropped
// at insert time.
const tradeRetention = 2 * 365 * 24 * time.Hour

// Activity whitelists for the currency table. Everything else upstream
// reports is ignored.
var (
	activeFiatCodes   = types.NewSet("USD", "EUR", "GBP", "BRL", "AUD")
	activeCryptoCodes = types.NewSet("BTC", "XMR", "BSQ", "ETH")
)

// bitcoinCurrency is always (re)injected into the table; upstream does not
// list the primary market currency itself.
var bitcoinCurrency = Currency{Code: "BTC", Name: "Bitcoin", Precision: 8, Kind: "crypto"}

// Store is the market-data snapshot store. Mutation happens only through the
// Set* operations driven by the refresh cycle; every read projects a derived
// view and leaves the stored records untouched.
type Store struct {
	mu sync.RWMutex

	feed    Feed
	lowMode aggregation.LowMode
	now     func() time.Time

	cryptoCurrencies []Currency
	fiatCurrencies   []Currency
	fiatCodes        types.Set[string]
	currencyIndex    map[string]Currency

	offers         []Offer
	trades         []Trade // descending by trade date
	tradesByMarket map[string][]Trade

	tickers map[string]*Ticker // whole-set snapshot, nil until warmed

	bsqPrice     float64
	priceUpdates chan float64
}

// config holds construction options for the store.
type config struct {
	lowMode aggregation.LowMode
	now     func() time.Time
}

// Option configures the store at construction time.
type Option func(*config)

// WithLowMode selects the OHLC low update rule used by ticker and candle
// aggregation. Default: aggregation.LowModeLegacy.
func WithLowMode(mode aggregation.LowMode) Option {
	return func(c *config) {
		c.lowMode = mode
	}
}

// WithNow overrides the clock. Used by tests.
func WithNow(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// NewStore constructs an empty store around the given upstream feed.
func NewStore(feed Feed, opts ...Option) *Store {
	cfg := config{
		lowMode: aggregation.LowModeLegacy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store{
		feed:           feed,
		lowMode:        cfg.lowMode,
		now:            cfg.now,
		fiatCodes:      types.NewSet[string](),
		currencyIndex:  make(map[string]Currency),
		tradesByMarket: make(map[string][]Trade),
		priceUpdates:   make(chan float64, 1),
	}
}

// PriceUpdates delivers the recomputed BSQ reference price, in integer-scaled
// satoshi units, after every trade refresh. The channel never blocks the
// refresh cycle; a slow consumer simply misses intermediate updates.
func (s *Store) PriceUpdates() <-chan float64 {
	return s.priceUpdates
}

// BsqPrice returns the current BSQ/BTC reference price, the median over the
// BSQ market's most recent trades. Zero until trades arrive.
func (s *Store) BsqPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bsqPrice
}

// Refresh pulls fresh currency, offer, and trade snapshots from the feed and
// rebuilds the whole-set ticker snapshot. Each fetch failure is logged and
// leaves the corresponding previous state untouched; the remaining fetches
// still run.
func (s *Store) Refresh(ctx context.Context) error {
	var errs []error

	if currencies, err := s.feed.Currencies(ctx); err != nil {
		logger.Warn(ctx, "currency refresh failed", "error", err)
		errs = append(errs, err)
	} else {
		s.SetCurrencies(currencies)
	}

	if offers, err := s.feed.Offers(ctx); err != nil {
		logger.Warn(ctx, "offer refresh failed", "error", err)
		errs = append(errs, err)
	} else {
		s.SetOffers(offers)
	}

	if trades, err := s.feed.Trades(ctx, s.NewestTradeDate(), s.OldestTradeDate()); err != nil {
		logger.Warn(ctx, "trade refresh failed", "error", err)
		errs = append(errs, err)
	} else {
		s.SetTrades(ctx, trades)
	}

	s.WarmTickerCache()
	return errors.Join(errs...)
}

// SetCurrencies replaces the currency tables wholesale. Upstream entries
// outside the activity whitelists are dropped, the synthetic BTC record is
// always injected, and the code index and fiat set are rebuilt.
func (s *Store) SetCurrencies(currencies []Currency) {
	var cryptos, fiats []Currency
	for _, currency := range currencies {
		switch {
		case currency.Kind == "fiat" && activeFiatCodes.Has(currency.Code):
			fiats = append(fiats, currency)
		case currency.Kind == "crypto" && activeCryptoCodes.Has(currency.Code):
			cryptos = append(cryptos, currency)
		}
	}
	cryptos = append(cryptos, bitcoinCurrency)

	fiatCodes := types.NewSet[string]()
	index := make(map[string]Currency, len(cryptos)+len(fiats))
	for _, currency := range fiats {
		fiatCodes.Add(currency.Code)
		index[currency.Code] = currency
	}
	for _, currency := range cryptos {
		index[currency.Code] = currency
	}

	s.mu.Lock()
	s.cryptoCurrencies = cryptos
	s.fiatCurrencies = fiats
	s.fiatCodes = fiatCodes
	s.currencyIndex = index
	s.mu.Unlock()
}

// SetOffers replaces the offer snapshot wholesale and invalidates the ticker
// snapshot.
func (s *Store) SetOffers(offers []Offer) {
	s.mu.Lock()
	s.offers = offers
	s.tickers = nil
	s.mu.Unlock()
}

// SetTrades appends incoming trades, dropping entries older than the
// retention window, re-sorts the flat list by trade date descending, and
// recomputes the BSQ reference price from the BSQ market's latest trades.
// Deduplication is not attempted; upstream may re-deliver.
func (s *Store) SetTrades(ctx context.Context, trades []Trade) {
	cutoff := s.now().Add(-tradeRetention).UnixMilli()

	s.mu.Lock()
	before := len(s.trades)
	for _, trade := range trades {
		if trade.TradeDate <= cutoff {
			continue
		}
		trade.market = MarketKey(trade.CurrencyPair)
		s.tradesByMarket[trade.market] = append(s.tradesByMarket[trade.market], trade)
		s.trades = append(s.trades, trade)
	}
	sort.SliceStable(s.trades, func(i, j int) bool {
		return s.trades[i].TradeDate > s.trades[j].TradeDate
	})
	after := len(s.trades)
	s.tickers = nil
	s.mu.Unlock()

	logger.Info(ctx, "trade data updated", "records_before", before, "records_after", after)
	s.updateBsqPrice(ctx)
}

// NewestTradeDate returns the most recent cached trade timestamp in unix
// milliseconds, or 0 when no trades are cached.
func (s *Store) NewestTradeDate() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.trades) == 0 {
		return 0
	}
	return s.trades[0].TradeDate
}

// OldestTradeDate returns the oldest cached trade timestamp in unix
// milliseconds, or 0 when no trades are cached.
func (s *Store) OldestTradeDate() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.trades) == 0 {
		return 0
	}
	return s.trades[len(s.trades)-1].TradeDate
}

// GetCurrencies returns the currency table keyed by code. Kind selects the
// crypto, fiat, or active subset; anything else returns the full table.
func (s *Store) GetCurrencies(kind string) map[string]Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var currencies []Currency
	switch kind {
	case "fiat":
		currencies = s.fiatCurrencies
	case "crypto":
		currencies = s.cryptoCurrencies
	case "active":
		currencies = append(append([]Currency{}, s.cryptoCurrencies...), s.fiatCurrencies...)
	default:
		currencies = append(append([]Currency{}, s.cryptoCurrencies...), s.fiatCurrencies...)
	}

	result := make(map[string]Currency, len(currencies))
	for _, currency := range currencies {
		result[currency.Code] = currency
	}
	return result
}

// updateBsqPrice recomputes the reference price as the median of the BSQ
// market's most recent trade prices, then pushes the integer-scaled value to
// the update channel.
func (s *Store) updateBsqPrice(ctx context.Context) {
	views := s.GetTrades(TradeQuery{Market: "bsq_btc"})

	prices := make([]float64, 0, len(views))
	for _, view := range views {
		price, err := strconv.ParseFloat(view.Price, 64)
		if err != nil {
			continue
		}
		prices = append(prices, price)
	}
	sort.Float64s(prices)

	price := aggregation.Median(prices)

	s.mu.Lock()
	s.bsqPrice = price
	s.mu.Unlock()

	select {
	case s.priceUpdates <- price * 1e8:
	default:
	}

	logger.Debug(ctx, "bsq reference price updated", "price", price, "reference_trades", len(prices))
}

// MarketKey derives the market key from an upstream currency pair: the pair
// lower-cased with the separator replaced by an underscore.
func MarketKey(currencyPair string) string {
	return strings.ToLower(strings.Replace(currencyPair, "/", "_", 1))
}

// currencyPairOf is the inverse of MarketKey: "btc_usd" -> "BTC/USD".
func currencyPairOf(market string) string {
	return strings.ToUpper(strings.Replace(market, "_", "/", 1))
}

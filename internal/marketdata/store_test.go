package marketdata

import (
	"os"
	"testing"
	"time"

	"github.com/bisq-network/bsqindex/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithLevel("error"))
	os.Exit(m.Run())
}

// fixedNow anchors every test clock. 2021-06-15 12:00:00 UTC.
var fixedNow = time.Date(2021, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(opts ...Option) *Store {
	base := []Option{WithNow(func() time.Time { return fixedNow })}
	return NewStore(nil, append(base, opts...)...)
}

func testCurrencies() []Currency {
	return []Currency{
		{Code: "USD", Name: "US Dollar", Precision: 2, Kind: "fiat"},
		{Code: "EUR", Name: "Euro", Precision: 2, Kind: "fiat"},
		{Code: "BSQ", Name: "BSQ", Precision: 2, Kind: "crypto"},
		{Code: "XMR", Name: "Monero", Precision: 8, Kind: "crypto"},
		{Code: "DOGE", Name: "Dogecoin", Precision: 8, Kind: "crypto"},
		{Code: "JPY", Name: "Japanese Yen", Precision: 2, Kind: "fiat"},
	}
}

// mkTrade builds an upstream trade ageSeconds before the fixed clock.
func mkTrade(pair, offerID string, ageSeconds int64, price, amount, volume float64) Trade {
	left, _, _ := splitPair(pair)
	currency := left
	if left == "BTC" {
		_, currency, _ = splitPair(pair)
	}
	return Trade{
		Currency:                 currency,
		CurrencyPair:             pair,
		Direction:                "BUY",
		PrimaryMarketDirection:   "BUY",
		OfferID:                  offerID,
		PaymentMethod:            "SEPA",
		TradeDate:                fixedNow.Add(-time.Duration(ageSeconds) * time.Second).UnixMilli(),
		PrimaryMarketTradePrice:  price,
		PrimaryMarketTradeAmount: amount,
		PrimaryMarketTradeVolume: volume,
	}
}

func TestSetCurrencies(t *testing.T) {
	t.Run("should keep whitelisted currencies and inject bitcoin", func(t *testing.T) {
		store := newTestStore()

		store.SetCurrencies(testCurrencies())

		all := store.GetCurrencies("all")
		assert.Contains(t, all, "BTC")
		assert.Contains(t, all, "USD")
		assert.Contains(t, all, "BSQ")
		assert.NotContains(t, all, "DOGE")
		assert.NotContains(t, all, "JPY")
	})

	t.Run("should split fiat and crypto subsets", func(t *testing.T) {
		store := newTestStore()

		store.SetCurrencies(testCurrencies())

		fiat := store.GetCurrencies("fiat")
		crypto := store.GetCurrencies("crypto")
		assert.Len(t, fiat, 2)
		assert.Contains(t, fiat, "USD")
		assert.Contains(t, fiat, "EUR")
		assert.Len(t, crypto, 3)
		assert.Contains(t, crypto, "BTC")
		assert.Contains(t, crypto, "BSQ")
		assert.Contains(t, crypto, "XMR")
	})
}

func TestSetTrades(t *testing.T) {
	t.Run("should drop trades older than the retention window", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())

		threeYears := int64(3 * 365 * 24 * 3600)
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "fresh", 3600, 5000000, 1e8, 5000000),
			mkTrade("BTC/USD", "stale", threeYears, 5000000, 1e8, 5000000),
		})

		views := store.GetTrades(TradeQuery{Market: "btc_usd"})
		require.Len(t, views, 1)
		assert.Equal(t, "fresh", views[0].TradeID)
	})

	t.Run("should keep the flat list sorted newest first", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())

		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "old", 7200, 5000000, 1e8, 5000000),
			mkTrade("BTC/USD", "new", 60, 5100000, 1e8, 5100000),
			mkTrade("BTC/USD", "mid", 3600, 5050000, 1e8, 5050000),
		})

		assert.Equal(t, fixedNow.Add(-time.Minute).UnixMilli(), store.NewestTradeDate())
		assert.Equal(t, fixedNow.Add(-2*time.Hour).UnixMilli(), store.OldestTradeDate())
	})

	t.Run("should report zero bounds while empty", func(t *testing.T) {
		store := newTestStore()

		assert.Zero(t, store.NewestTradeDate())
		assert.Zero(t, store.OldestTradeDate())
	})

	t.Run("should recompute the bsq price as the median of bsq trades", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())

		store.SetTrades(t.Context(), []Trade{
			mkTrade("BSQ/BTC", "t1", 60, 3000, 1e8, 3000),
			mkTrade("BSQ/BTC", "t2", 120, 5000, 1e8, 5000),
			mkTrade("BSQ/BTC", "t3", 180, 4000, 1e8, 4000),
		})

		// Raw price 4000 renormalizes to 4000/1e8 BTC per BSQ.
		assert.InDelta(t, 4000.0/1e8, store.BsqPrice(), 1e-12)

		select {
		case scaled := <-store.PriceUpdates():
			assert.InDelta(t, 4000.0, scaled, 1e-6)
		default:
			t.Fatal("expected a price update")
		}
	})

	t.Run("should ignore non bsq trades for the reference price", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())

		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "t1", 60, 5000000, 1e8, 5000000),
		})

		assert.Zero(t, store.BsqPrice())
	})
}

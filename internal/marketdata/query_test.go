package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTrades(t *testing.T) {
	t.Run("should return newest first by default", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "old", 7200, 5000000, 1e8, 5000000),
			mkTrade("BTC/USD", "new", 60, 5100000, 1e8, 5100000),
		})

		views := store.GetTrades(TradeQuery{Market: "btc_usd"})

		require.Len(t, views, 2)
		assert.Equal(t, "new", views[0].TradeID)
		assert.Equal(t, "old", views[1].TradeID)
	})

	t.Run("should honor ascending order", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "old", 7200, 5000000, 1e8, 5000000),
			mkTrade("BTC/USD", "new", 60, 5100000, 1e8, 5100000),
		})

		views := store.GetTrades(TradeQuery{Market: "btc_usd", Sort: "asc"})

		require.Len(t, views, 2)
		assert.Equal(t, "old", views[0].TradeID)
	})

	t.Run("should renormalize against the quote currency precision", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		// USD has precision 2, so raw values scale by 10^6.
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "t1", 60, 5000000, 1e8, 5000000),
		})

		views := store.GetTrades(TradeQuery{Market: "btc_usd"})

		require.Len(t, views, 1)
		assert.Equal(t, "50000.00000000", views[0].Price)
		assert.Equal(t, "1.00000000", views[0].Amount)
		assert.Equal(t, "50000.00000000", views[0].Volume)
	})

	t.Run("should annotate the market on whole set queries", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "t1", 60, 5000000, 1e8, 5000000),
			mkTrade("BSQ/BTC", "t2", 120, 4000, 1e8, 4000),
		})

		views := store.GetTrades(TradeQuery{Market: "all"})

		require.Len(t, views, 2)
		assert.Equal(t, "btc_usd", views[0].Market)
		assert.Equal(t, "bsq_btc", views[1].Market)
	})

	t.Run("should filter by direction", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		sell := mkTrade("BTC/USD", "s1", 60, 5000000, 1e8, 5000000)
		sell.Direction = "SELL"
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "b1", 120, 5000000, 1e8, 5000000),
			sell,
		})

		views := store.GetTrades(TradeQuery{Market: "btc_usd", Direction: "sell"})

		require.Len(t, views, 1)
		assert.Equal(t, "s1", views[0].TradeID)
	})

	t.Run("should reject an invalid direction", func(t *testing.T) {
		store := newTestStore()

		views := store.GetTrades(TradeQuery{Market: "btc_usd", Direction: "sideways"})

		assert.Nil(t, views)
	})

	t.Run("should apply the limit during the scan", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "t1", 60, 5000000, 1e8, 5000000),
			mkTrade("BTC/USD", "t2", 120, 5000000, 1e8, 5000000),
			mkTrade("BTC/USD", "t3", 180, 5000000, 1e8, 5000000),
		})

		views := store.GetTrades(TradeQuery{Market: "btc_usd", Limit: 2})

		assert.Len(t, views, 2)
	})

	t.Run("should discard self pair trades as malformed", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/BTC", "bogus", 60, 1, 1, 1),
			mkTrade("BTC/USD", "good", 120, 5000000, 1e8, 5000000),
		})

		views := store.GetTrades(TradeQuery{})

		require.Len(t, views, 1)
		assert.Equal(t, "good", views[0].TradeID)
	})

	t.Run("should discard trades referencing unknown currencies", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/JPY", "unknown", 60, 1, 1, 1),
			mkTrade("BTC/USD", "good", 120, 5000000, 1e8, 5000000),
		})

		views := store.GetTrades(TradeQuery{})

		require.Len(t, views, 1)
		assert.Equal(t, "good", views[0].TradeID)
	})

	t.Run("should resolve trade id boundaries during the descending scan", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "t1", 60, 5000000, 1e8, 5000000),
			mkTrade("BTC/USD", "t2", 120, 5000000, 1e8, 5000000),
			mkTrade("BTC/USD", "t3", 180, 5000000, 1e8, 5000000),
		})

		// trade_id_to marks where the scan starts matching.
		views := store.GetTrades(TradeQuery{Market: "btc_usd", TradeIDTo: "t2"})

		require.Len(t, views, 2)
		assert.Equal(t, "t2", views[0].TradeID)
		assert.Equal(t, "t3", views[1].TradeID)
	})

	t.Run("should return the empty set when a boundary id is never found", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "t1", 60, 5000000, 1e8, 5000000),
		})

		assert.Empty(t, store.GetTrades(TradeQuery{Market: "btc_usd", TradeIDFrom: "missing"}))
		assert.Empty(t, store.GetTrades(TradeQuery{Market: "btc_usd", TradeIDTo: "missing"}))
	})

	t.Run("should restrict by time window", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetTrades(t.Context(), []Trade{
			mkTrade("BTC/USD", "inside", 60, 5000000, 1e8, 5000000),
			mkTrade("BTC/USD", "outside", 7200, 5000000, 1e8, 5000000),
		})

		views := store.GetTrades(TradeQuery{
			Market:  "btc_usd",
			FromSec: fixedNow.Add(-time.Hour).Unix(),
			ToSec:   fixedNow.Unix(),
		})

		require.Len(t, views, 1)
		assert.Equal(t, "inside", views[0].TradeID)
	})
}

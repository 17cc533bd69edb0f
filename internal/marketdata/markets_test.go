package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkOffer builds an upstream offer dated ageSeconds before the fixed clock.
func mkOffer(id, pair, direction string, ageSeconds int64, rawPrice, primaryPrice, primaryAmount, primaryVolume float64) Offer {
	return Offer{
		ID:                     id,
		Date:                   fixedNow.Add(-time.Duration(ageSeconds) * time.Second).UnixMilli(),
		CurrencyPair:           pair,
		Direction:              direction,
		PrimaryMarketDirection: direction,
		Price:                  rawPrice,
		MinAmount:              1e7,
		PrimaryMarketPrice:     primaryPrice,
		PrimaryMarketAmount:    primaryAmount,
		PrimaryMarketVolume:    primaryVolume,
		PaymentMethod:          "SEPA",
	}
}

func TestGetMarkets(t *testing.T) {
	t.Run("should cross active currencies against btc", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies([]Currency{
			{Code: "USD", Name: "US Dollar", Precision: 2, Kind: "fiat"},
			{Code: "BSQ", Name: "BSQ", Precision: 8, Kind: "crypto"},
		})

		markets := store.GetMarkets()

		require.Contains(t, markets, "btc_usd")
		require.Contains(t, markets, "bsq_btc")
		assert.NotContains(t, markets, "btc_btc")
		assert.Len(t, markets, 2)
	})

	t.Run("should quote fiat markets as btc over fiat", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies([]Currency{
			{Code: "USD", Name: "US Dollar", Precision: 2, Kind: "fiat"},
		})

		market := store.GetMarkets()["btc_usd"]

		assert.Equal(t, "BTC", market.LSymbol)
		assert.Equal(t, "USD", market.RSymbol)
		assert.Equal(t, "crypto", market.LType)
		assert.Equal(t, "fiat", market.RType)
		assert.Equal(t, 8, market.LPrecision)
		assert.Equal(t, 2, market.RPrecision)
		assert.Equal(t, "Bitcoin/US Dollar", market.Name)
	})

	t.Run("should quote crypto markets against btc with eight decimals", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies([]Currency{
			{Code: "XMR", Name: "Monero", Precision: 8, Kind: "crypto"},
		})

		market := store.GetMarkets()["xmr_btc"]

		assert.Equal(t, "XMR", market.LSymbol)
		assert.Equal(t, "BTC", market.RSymbol)
		assert.Equal(t, 8, market.LPrecision)
		assert.Equal(t, 8, market.RPrecision)
	})
}

func TestGetDepth(t *testing.T) {
	t.Run("should sort buys descending and sells ascending as btc strings", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetOffers([]Offer{
			mkOffer("b1", "BTC/USD", "BUY", 60, 100, 100, 1e8, 100),
			mkOffer("s1", "BTC/USD", "SELL", 60, 200, 200, 1e8, 200),
		})

		depth := store.GetDepth("btc_usd")

		assert.Equal(t, []string{"0.00000100"}, depth.Buys)
		assert.Equal(t, []string{"0.00000200"}, depth.Sells)
	})

	t.Run("should order multiple offers per side", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetOffers([]Offer{
			mkOffer("b1", "BTC/USD", "BUY", 60, 100, 100, 1e8, 100),
			mkOffer("b2", "BTC/USD", "BUY", 60, 300, 300, 1e8, 300),
			mkOffer("s1", "BTC/USD", "SELL", 60, 500, 500, 1e8, 500),
			mkOffer("s2", "BTC/USD", "SELL", 60, 400, 400, 1e8, 400),
		})

		depth := store.GetDepth("btc_usd")

		assert.Equal(t, []string{"0.00000300", "0.00000100"}, depth.Buys)
		assert.Equal(t, []string{"0.00000400", "0.00000500"}, depth.Sells)
	})

	t.Run("should ignore other markets", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetOffers([]Offer{
			mkOffer("b1", "BSQ/BTC", "BUY", 60, 100, 100, 1e8, 100),
		})

		depth := store.GetDepth("btc_usd")

		assert.Empty(t, depth.Buys)
		assert.Empty(t, depth.Sells)
	})
}

func TestGetOffers(t *testing.T) {
	t.Run("should project renormalized offer views", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetOffers([]Offer{
			mkOffer("b1", "BTC/USD", "BUY", 60, 100, 5000000, 1e8, 5000000),
		})

		book := store.GetOffers("btc_usd", "")

		require.Len(t, book.Buys, 1)
		view := book.Buys[0]
		assert.Equal(t, "b1", view.OfferID)
		assert.Equal(t, "BUY", view.Direction)
		// USD precision 2 scales primary values by 10^6.
		assert.Equal(t, "50000.00000000", view.Price)
		assert.Equal(t, "1.00000000", view.Amount)
		assert.Equal(t, "50000.00000000", view.Volume)
		assert.Equal(t, "0.10000000", view.MinAmount)
		assert.Nil(t, view.OfferFeeTxID)
	})

	t.Run("should return only the requested side", func(t *testing.T) {
		store := newTestStore()
		store.SetCurrencies(testCurrencies())
		store.SetOffers([]Offer{
			mkOffer("b1", "BTC/USD", "BUY", 60, 100, 5000000, 1e8, 5000000),
			mkOffer("s1", "BTC/USD", "SELL", 60, 200, 5100000, 1e8, 5100000),
		})

		book := store.GetOffers("btc_usd", "sell")

		assert.Nil(t, book.Buys)
		require.Len(t, book.Sells, 1)
		assert.Equal(t, "s1", book.Sells[0].OfferID)
	})
}

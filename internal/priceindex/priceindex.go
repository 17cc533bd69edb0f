// Package priceindex holds the reference price table consulted when deriving
// the BSQ stats fields. Provider prices arrive through SetPrices; the BSQ
// price itself is not supplied by providers and is fed from the market
// store's trade-derived median instead.
package priceindex

import (
	"math"
	"strings"
	"sync"

	"github.com/bisq-network/bsqindex/internal/blockcache"
)

// Entry is one provider price record.
type Entry struct {
	CurrencyCode string  `json:"currencyCode"`
	Price        float64 `json:"price"`
}

// Index is a concurrency-safe price table. The zero value is not usable;
// construct with New.
type Index struct {
	mu       sync.RWMutex
	prices   map[string]float64
	loaded   bool
	bsqPrice float64
}

// Compile-time assertion that Index can back the cache's price lookups.
var _ blockcache.PriceSource = (*Index)(nil)

// New returns an empty index. Every lookup yields NaN until prices arrive.
func New() *Index {
	return &Index{prices: make(map[string]float64)}
}

// SetPrices replaces the provider price table wholesale.
func (i *Index) SetPrices(entries []Entry) {
	prices := make(map[string]float64, len(entries))
	for _, entry := range entries {
		prices[entry.CurrencyCode] = entry.Price
	}

	i.mu.Lock()
	i.prices = prices
	i.loaded = true
	i.mu.Unlock()
}

// SetBsqPrice stores the trade-derived BSQ price. The value arrives in
// integer-scaled satoshi units and is kept as a plain BSQ/BTC price.
func (i *Index) SetBsqPrice(scaled float64) {
	i.mu.Lock()
	i.bsqPrice = scaled / 1e8
	i.mu.Unlock()
}

// Price returns the reference price for a currency code or a market pair
// such as "btc_usd". For pairs the non-BTC leg is looked up. BSQ resolves to
// the trade-derived price, since providers do not quote it. NaN means no
// price is available.
func (i *Index) Price(currencyOrPair string) float64 {
	currency := strings.ToUpper(currencyOrPair)
	if left, right, ok := strings.Cut(currency, "_"); ok {
		if left == "BTC" {
			currency = right
		} else {
			currency = left
		}
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if currency == "BSQ" {
		if i.bsqPrice != 0 {
			return i.bsqPrice
		}
		return math.NaN()
	}
	if !i.loaded {
		return math.NaN()
	}
	if price, ok := i.prices[currency]; ok {
		return price
	}
	return math.NaN()
}

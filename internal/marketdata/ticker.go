package marketdata

import (
	"sort"
	"strings"

	"github.com/bisq-network/bsqindex/internal/aggregation"
)

// tickerWindowSec is the rolling window a ticker summarizes, in seconds.
const tickerWindowSec = 24 * 3600

// GetTicker computes the 24-hour ticker for one market. It returns nil when
// the market references an unknown quote currency.
func (s *Store) GetTicker(market string) *Ticker {
	return s.tickerForMarket(market)
}

// GetTickers returns the ticker for every market. The whole-set snapshot
// built by the last refresh cycle is served when present; otherwise every
// ticker is computed from scratch.
func (s *Store) GetTickers() map[string]*Ticker {
	s.mu.RLock()
	cached := s.tickers
	s.mu.RUnlock()
	if cached != nil {
		return cached
	}
	return s.computeTickers()
}

// WarmTickerCache drops the whole-set ticker snapshot and rebuilds it from
// the current offers and trades. Called at the end of each refresh cycle.
func (s *Store) WarmTickerCache() {
	s.mu.Lock()
	s.tickers = nil
	s.mu.Unlock()

	tickers := s.computeTickers()

	s.mu.Lock()
	s.tickers = tickers
	s.mu.Unlock()
}

func (s *Store) computeTickers() map[string]*Ticker {
	markets := s.GetMarkets()
	tickers := make(map[string]*Ticker, len(markets))
	for pair := range markets {
		tickers[pair] = s.tickerForMarket(pair)
	}
	return tickers
}

// tickerForMarket summarizes the market's last 24 hours of trades into a
// single bucket. With no trades in the window it falls back to the market's
// most recent trade price, repeated as last/high/low with zero volumes. The
// buy and sell quotes are overlaid separately from the best open offer per
// side within the same window.
func (s *Store) tickerForMarket(market string) *Ticker {
	toSec := s.now().Unix()
	fromSec := toSec - tickerWindowSec

	split := strings.SplitN(market, "_", 2)
	if len(split) != 2 {
		return nil
	}

	s.mu.RLock()
	currencyRight, ok := s.currencyIndex[strings.ToUpper(split[1])]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	matches := s.tradesByCriteria(market, toSec, fromSec, "", "", "", "asc", unlimited)
	buckets := aggregation.Summarize(aggregationTrades(matches), fromSec, "", s.lowMode)

	var ticker Ticker
	if bucket, ok := buckets[fromSec]; ok {
		ticker = Ticker{
			Last:        aggregation.FormatBTC(bucket.Close),
			High:        aggregation.FormatBTC(bucket.High),
			Low:         aggregation.FormatBTC(bucket.Low),
			VolumeLeft:  aggregation.FormatBTC(bucket.VolumeLeft),
			VolumeRight: aggregation.FormatBTC(bucket.VolumeRight),
		}
	} else {
		lastTradePrice := aggregation.FormatBTC(0)
		s.mu.RLock()
		if bucket := s.tradesByMarket[market]; len(bucket) > 0 {
			lastTradePrice = aggregation.FormatBTC(
				bucket[0].PrimaryMarketTradePrice * aggregation.ScaleFactor(currencyRight.Precision))
		}
		s.mu.RUnlock()
		ticker = Ticker{
			Last:        lastTradePrice,
			High:        lastTradePrice,
			Low:         lastTradePrice,
			VolumeLeft:  "0",
			VolumeRight: "0",
		}
	}

	buy, sell := s.bestOffers(market, fromSec*1000, toSec*1000)
	if buy != nil {
		value := aggregation.FormatBTC(buy.PrimaryMarketPrice * aggregation.ScaleFactor(currencyRight.Precision))
		ticker.Buy = &value
	}
	if sell != nil {
		value := aggregation.FormatBTC(sell.PrimaryMarketPrice * aggregation.ScaleFactor(currencyRight.Precision))
		ticker.Sell = &value
	}

	return &ticker
}

// bestOffers returns the first open offer per side within the time window,
// scanning offers ordered ascending by their raw price field.
func (s *Store) bestOffers(market string, fromMilli, toMilli int64) (buy, sell *Offer) {
	currencyPair := currencyPairOf(market)

	s.mu.RLock()
	offers := make([]Offer, len(s.offers))
	copy(offers, s.offers)
	s.mu.RUnlock()

	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })

	for i := range offers {
		offer := &offers[i]
		if offer.CurrencyPair != currencyPair || offer.Date < fromMilli || offer.Date > toMilli {
			continue
		}
		switch offer.PrimaryMarketDirection {
		case "BUY":
			if buy == nil {
				buy = offer
			}
		case "SELL":
			if sell == nil {
				sell = offer
			}
		}
		if buy != nil && sell != nil {
			break
		}
	}
	return buy, sell
}

// aggregationTrades projects scaled trades into the aggregation input shape.
func aggregationTrades(matches []scaledTrade) []aggregation.Trade {
	trades := make([]aggregation.Trade, 0, len(matches))
	for _, match := range matches {
		trades = append(trades, aggregation.Trade{
			TimeSec: match.src.TradeDate / 1000,
			Price:   match.price,
			Amount:  match.amount,
			Volume:  match.volume,
		})
	}
	return trades
}

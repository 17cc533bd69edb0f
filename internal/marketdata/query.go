package marketdata

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bisq-network/bsqindex/internal/aggregation"
	"github.com/bisq-network/bsqindex/internal/pkg/validation"
)

const (
	// defaultTradeLimit applies when a query does not specify a limit.
	defaultTradeLimit = 100

	// maxTradeLimit caps every trade query.
	maxTradeLimit = 2000
)

// earliestTradeTime is the lower bound used when a query omits the from
// timestamp.
var earliestTradeTime = time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)

// TradeQuery filters the trade history. Zero values select the defaults:
// the whole market set, a window from 2016 to now, descending order, and a
// limit of 100 entries.
type TradeQuery struct {
	Market      string
	FromSec     int64
	ToSec       int64
	TradeIDFrom string
	TradeIDTo   string
	Direction   string `validate:"omitempty,oneof=buy sell"`
	Limit       int    `validate:"min=0"`
	Sort        string `validate:"omitempty,oneof=asc desc"`
}

// scaledTrade pairs a stored trade with its renormalized monetary values and
// derived market key. It is a per-call view; the stored record is never
// touched.
type scaledTrade struct {
	src    Trade
	market string
	price  float64
	amount float64
	volume float64
}

// GetTrades returns renormalized trade views matching the query, newest
// first unless ascending order is requested. Market "all" (or empty) spans
// every market and annotates each view with its market key.
func (s *Store) GetTrades(query TradeQuery) []TradeView {
	if err := validation.Check(query); err != nil {
		return nil
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultTradeLimit
	}
	limit = min(limit, maxTradeLimit)

	market := query.Market
	allMarkets := market == "" || market == "all"
	if allMarkets {
		market = ""
	}

	fromSec := query.FromSec
	if fromSec == 0 {
		fromSec = earliestTradeTime.Unix()
	}
	toSec := query.ToSec
	if toSec == 0 {
		toSec = s.now().Unix()
	}

	sortOrder := query.Sort
	if sortOrder == "" {
		sortOrder = "desc"
	}

	matches := s.tradesByCriteria(market, toSec, fromSec,
		query.TradeIDTo, query.TradeIDFrom, query.Direction, sortOrder, limit)

	if sortOrder == "asc" {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].src.TradeDate < matches[j].src.TradeDate
		})
	} else {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].src.TradeDate > matches[j].src.TradeDate
		})
	}

	views := make([]TradeView, 0, len(matches))
	for _, match := range matches {
		view := TradeView{
			Direction:     match.src.PrimaryMarketDirection,
			Price:         aggregation.FormatBTC(match.price),
			Amount:        aggregation.FormatBTC(match.amount),
			Volume:        aggregation.FormatBTC(match.volume),
			PaymentMethod: match.src.PaymentMethod,
			TradeID:       match.src.OfferID,
			TradeDate:     match.src.TradeDate,
		}
		if allMarkets {
			view.Market = match.market
		}
		views = append(views, view)
	}
	return views
}

// tradesByCriteria scans the trade history and returns renormalized matches.
// An empty market spans every market. The trade-id boundaries are resolved
// to timestamps during the scan, which relies on iterating in descending
// chronological order; ascending requests scan a reversed copy. If a
// requested boundary id is never seen the result is the empty set, strict
// boundary semantics rather than best effort.
//
// Self-pair trades and trades referencing currencies missing from the table
// are discarded as malformed.
func (s *Store) tradesByCriteria(
	market string,
	toSec, fromSec int64,
	tradeIDTo, tradeIDFrom string,
	direction string,
	sortOrder string,
	limit int,
) []scaledTrade {
	s.mu.RLock()
	trades := make([]Trade, len(s.trades))
	copy(trades, s.trades)
	index := s.currencyIndex
	s.mu.RUnlock()

	if sortOrder == "asc" {
		for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
			trades[i], trades[j] = trades[j], trades[i]
		}
	}

	fromMilli := fromSec * 1000
	toMilli := toSec * 1000

	var (
		tradeIDFromTime int64 = -1
		tradeIDToTime   int64 = -1
	)

	var matches []scaledTrade
	for _, trade := range trades {
		if tradeIDFrom != "" && tradeIDFrom == trade.OfferID {
			tradeIDFromTime = trade.TradeDate
		}
		if tradeIDTo != "" && tradeIDTo == trade.OfferID {
			tradeIDToTime = trade.TradeDate
		}
		if tradeIDTo != "" && tradeIDToTime < 0 {
			continue
		}
		if tradeIDFrom != "" && tradeIDFromTime >= 0 && tradeIDFromTime != trade.TradeDate {
			continue
		}
		if market != "" && market != trade.market {
			continue
		}
		if trade.TradeDate < fromMilli || trade.TradeDate > toMilli {
			continue
		}
		if direction != "" && direction != strings.ToLower(trade.Direction) {
			continue
		}

		left, right, ok := splitPair(trade.CurrencyPair)
		if !ok || left == right {
			continue
		}
		currencyLeft, okLeft := index[left]
		currencyRight, okRight := index[right]
		if !okLeft || !okRight {
			continue
		}

		matches = append(matches, scaledTrade{
			src:    trade,
			market: trade.market,
			price:  trade.PrimaryMarketTradePrice * aggregation.ScaleFactor(currencyRight.Precision),
			amount: trade.PrimaryMarketTradeAmount * aggregation.ScaleFactor(currencyLeft.Precision),
			volume: trade.PrimaryMarketTradeVolume * aggregation.ScaleFactor(currencyRight.Precision),
		})

		if len(matches) >= limit {
			break
		}
	}

	if (tradeIDFrom != "" && tradeIDFromTime < 0) || (tradeIDTo != "" && tradeIDToTime < 0) {
		return nil
	}
	return matches
}

// splitPair splits an upstream "LEFT/RIGHT" currency pair.
func splitPair(currencyPair string) (left, right string, ok bool) {
	left, right, ok = strings.Cut(currencyPair, "/")
	return left, right, ok
}

// unlimited is the scan limit used by aggregation reads that need the whole
// matching set.
const unlimited = math.MaxInt

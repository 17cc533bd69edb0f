package marketdata

import (
	"github.com/bisq-network/bsqindex/internal/aggregation"
)

// GetHloc buckets the market's trades into OHLC candles. Interval
// aggregation.IntervalAuto (or empty) selects the granularity from the
// requested range. Zero timestamps select the defaults: from 2016 to now.
// Candles are returned in ascending period order.
func (s *Store) GetHloc(market string, interval aggregation.Interval, fromSec, toSec int64) []Candle {
	fromSec, toSec = s.normalizeRange(fromSec, toSec)

	if interval == "" || interval == aggregation.IntervalAuto {
		interval = aggregation.FromRange(toSec - fromSec)
	}

	matches := s.tradesByCriteria(market, toSec, fromSec, "", "", "", "asc", unlimited)
	buckets := aggregation.Summarize(aggregationTrades(matches), fromSec, interval, s.lowMode)

	candles := make([]Candle, 0, len(buckets))
	for _, bucket := range aggregation.SortedBuckets(buckets) {
		candles = append(candles, Candle{
			PeriodStart: bucket.PeriodStart,
			Open:        aggregation.FormatBTC(bucket.Open),
			Close:       aggregation.FormatBTC(bucket.Close),
			High:        aggregation.FormatBTC(bucket.High),
			Low:         aggregation.FormatBTC(bucket.Low),
			Avg:         aggregation.FormatBTC(bucket.Avg),
			VolumeRight: aggregation.FormatBTC(bucket.VolumeRight),
			VolumeLeft:  aggregation.FormatBTC(bucket.VolumeLeft),
		})
	}
	return candles
}

// GetVolumes buckets traded volume and trade counts per interval. An empty
// market spans every market. Volume attribution follows the trade's quoted
// currency: fiat-quoted trades contribute their base amount, crypto-quoted
// trades their quote volume.
func (s *Store) GetVolumes(market string, interval aggregation.Interval, fromSec, toSec int64) []VolumeView {
	fromSec, toSec = s.normalizeRange(fromSec, toSec)

	if interval == "" || interval == aggregation.IntervalAuto {
		interval = aggregation.FromRange(toSec - fromSec)
	}

	if market == "all" {
		market = ""
	}
	matches := s.tradesByCriteria(market, toSec, fromSec, "", "", "", "asc", unlimited)

	s.mu.RLock()
	fiatCodes := s.fiatCodes
	s.mu.RUnlock()

	entries := make([]aggregation.VolumeEntry, 0, len(matches))
	for _, match := range matches {
		volume := match.volume
		if fiatCodes.Has(match.src.Currency) {
			volume = match.amount
		}
		entries = append(entries, aggregation.VolumeEntry{
			TimeSec: match.src.TradeDate / 1000,
			Volume:  volume,
		})
	}

	buckets := aggregation.SummarizeVolumes(entries, interval)

	views := make([]VolumeView, 0, len(buckets))
	for _, bucket := range aggregation.SortedVolumeBuckets(buckets) {
		views = append(views, VolumeView{
			PeriodStart: bucket.PeriodStart,
			NumTrades:   bucket.NumTrades,
			Volume:      aggregation.FormatBTC(bucket.Volume),
		})
	}
	return views
}

// normalizeRange applies the default query window: from 2016 to now.
func (s *Store) normalizeRange(fromSec, toSec int64) (int64, int64) {
	if fromSec == 0 {
		fromSec = earliestTradeTime.Unix()
	}
	if toSec == 0 {
		toSec = s.now().Unix()
	}
	return fromSec, toSec
}

package aggregation

import "slices"

// LowMode selects how a bucket's low is updated after the first trade.
type LowMode int

const (
	// LowModeLegacy reproduces the historical conditional: a zero low is
	// treated as unset, and the stored low is kept whenever the incoming
	// price is strictly greater than it.
	LowModeLegacy LowMode = iota

	// LowModeStrict keeps a plain running minimum over the bucket.
	LowModeStrict
)

// Trade is the minimal per-trade input for summarization. All monetary
// fields are renormalized integer-scaled values (8-decimal BTC units).
type Trade struct {
	TimeSec int64   // trade time, unix seconds
	Price   float64 // renormalized price
	Amount  float64 // renormalized base ("left") amount
	Volume  float64 // renormalized quote ("right") volume
}

// Bucket is one summarized interval of trades.
type Bucket struct {
	PeriodStart int64   // unix seconds, aligned per the interval
	Open        float64 // first non-zero price seen
	Close       float64 // last non-zero price seen
	High        float64 // running maximum price
	Low         float64 // per the configured LowMode
	Avg         float64 // volume weighted: sum(quote) / sum(base) * 1e8
	VolumeLeft  float64 // accumulated base amount
	VolumeRight float64 // accumulated quote volume

	leftSum  float64 // base amounts of every trade routed to the bucket
	rightSum float64 // quote volumes of every trade routed to the bucket
	lowSet   bool    // strict mode: whether Low has been initialized
}

// Summarize folds trades (expected in ascending time order) into buckets.
// When interval is empty every trade lands in a single bucket keyed by
// fromSec; otherwise the bucket key is the aligned interval start.
//
// Per-trade update rules: open is set once, close is overwritten by every
// trade, high is a running maximum, low follows lowMode, and avg is the
// volume-weighted price recomputed from the bucket's full amount sums.
// Trades with a zero price still contribute to the avg denominator sums but
// do not touch the OHLC fields or the volume accumulators.
func Summarize(trades []Trade, fromSec int64, interval Interval, lowMode LowMode) map[int64]*Bucket {
	buckets := make(map[int64]*Bucket)

	for _, trade := range trades {
		key := fromSec
		if interval != "" {
			key = Start(trade.TimeSec, interval)
		}

		bucket, ok := buckets[key]
		if !ok {
			bucket = &Bucket{PeriodStart: key}
			buckets[key] = bucket
		}

		bucket.leftSum += trade.Amount
		bucket.rightSum += trade.Volume

		if trade.Price == 0 {
			continue
		}

		if bucket.Open == 0 {
			bucket.Open = trade.Price
		}
		bucket.Close = trade.Price
		if trade.Price > bucket.High {
			bucket.High = trade.Price
		}
		bucket.updateLow(trade.Price, lowMode)
		if bucket.leftSum != 0 {
			bucket.Avg = bucket.rightSum / bucket.leftSum * 1e8
		}
		bucket.VolumeLeft += trade.Amount
		bucket.VolumeRight += trade.Volume
	}

	return buckets
}

// updateLow applies the configured low rule for a non-zero price.
func (b *Bucket) updateLow(price float64, mode LowMode) {
	switch mode {
	case LowModeStrict:
		if !b.lowSet || price < b.Low {
			b.Low = price
			b.lowSet = true
		}
	default:
		if !(b.Low != 0 && price > b.Low) {
			b.Low = price
		}
	}
}

// SortedBuckets returns the buckets ordered by ascending period start.
func SortedBuckets(buckets map[int64]*Bucket) []*Bucket {
	out := make([]*Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Bucket) int {
		switch {
		case a.PeriodStart < b.PeriodStart:
			return -1
		case a.PeriodStart > b.PeriodStart:
			return 1
		default:
			return 0
		}
	})
	return out
}

// VolumeEntry is the per-trade input for volume-only bucketing. Volume must
// already carry the side the caller attributes (base amount for fiat-quoted
// trades, quote volume otherwise).
type VolumeEntry struct {
	TimeSec int64
	Volume  float64
}

// VolumeBucket accumulates traded volume and trade count per interval.
type VolumeBucket struct {
	PeriodStart int64
	Volume      float64
	NumTrades   int
}

// SummarizeVolumes folds entries into per-interval volume buckets.
func SummarizeVolumes(entries []VolumeEntry, interval Interval) map[int64]*VolumeBucket {
	buckets := make(map[int64]*VolumeBucket)

	for _, entry := range entries {
		key := Start(entry.TimeSec, interval)

		bucket, ok := buckets[key]
		if !ok {
			bucket = &VolumeBucket{PeriodStart: key}
			buckets[key] = bucket
		}

		bucket.Volume += entry.Volume
		bucket.NumTrades++
	}

	return buckets
}

// SortedVolumeBuckets returns volume buckets ordered by ascending period
// start.
func SortedVolumeBuckets(buckets map[int64]*VolumeBucket) []*VolumeBucket {
	out := make([]*VolumeBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *VolumeBucket) int {
		switch {
		case a.PeriodStart < b.PeriodStart:
			return -1
		case a.PeriodStart > b.PeriodStart:
			return 1
		default:
			return 0
		}
	})
	return out
}

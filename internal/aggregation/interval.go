// Package aggregation holds the pure market math: time-interval selection
// and alignment, OHLC candle summarization, volume bucketing, and the
// fixed-point renormalization helpers shared by every market query.
//
// Everything in this package operates on plain values and returns derived
// results; nothing here mutates stored records or touches the clock.
package aggregation

import "time"

// Interval identifies the width of an aggregation bucket.
type Interval string

const (
	IntervalAuto     Interval = "auto"
	IntervalMinute   Interval = "minute"
	Interval10Minute Interval = "10_minute"
	IntervalHalfHour Interval = "half_hour"
	IntervalHour     Interval = "hour"
	IntervalHalfDay  Interval = "half_day"
	IntervalDay      Interval = "day"
	IntervalWeek     Interval = "week"
	IntervalMonth    Interval = "month"
	IntervalYear     Interval = "year"
)

const daySeconds = 24 * 3600

// FromRange selects a bucket width for the requested range, in seconds.
// The threshold table is kept exactly as shipped; the month entry shares the
// week threshold, so month is never reachable through auto-selection.
func FromRange(rangeSeconds int64) Interval {
	switch {
	case rangeSeconds <= 3600:
		return IntervalMinute
	case rangeSeconds <= 1*daySeconds:
		return IntervalHalfHour
	case rangeSeconds <= 3*daySeconds:
		return IntervalHour
	case rangeSeconds <= 7*daySeconds:
		return IntervalHalfDay
	case rangeSeconds <= 60*daySeconds:
		return IntervalDay
	case rangeSeconds <= 12*31*daySeconds:
		return IntervalWeek
	case rangeSeconds <= 12*31*daySeconds:
		return IntervalMonth
	default:
		return IntervalYear
	}
}

// Start aligns the given unix timestamp (seconds) to the beginning of its
// interval. Sub-day intervals use fixed modulo alignment; day and larger
// align on the UTC calendar (midnight, the most recent Sunday, the first of
// the month, the first of January).
func Start(ts int64, interval Interval) int64 {
	switch interval {
	case IntervalMinute:
		return ts - ts%60
	case Interval10Minute:
		return ts - ts%600
	case IntervalHalfHour:
		return ts - ts%1800
	case IntervalHour:
		return ts - ts%3600
	case IntervalHalfDay:
		return ts - ts%(3600*12)
	case IntervalDay:
		return midnight(ts).Unix()
	case IntervalWeek:
		day := midnight(ts)
		return day.AddDate(0, 0, -int(day.Weekday())).Unix()
	case IntervalMonth:
		day := midnight(ts)
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC).Unix()
	case IntervalYear:
		day := midnight(ts)
		return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	default:
		return ts
	}
}

// midnight truncates the timestamp to 00:00:00 UTC of its day.
func midnight(ts int64) time.Time {
	t := time.Unix(ts, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

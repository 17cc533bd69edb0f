package aggregation

import (
	"math"
	"strconv"
)

// satoshisPerBTC is the fixed-point scale shared by every renormalized
// value: 8 decimal places.
const satoshisPerBTC = 1e8

// ScaleFactor returns the multiplier that renormalizes an upstream
// integer-scaled value with the given currency precision into 8-decimal
// BTC units.
func ScaleFactor(precision int) float64 {
	return math.Pow(10, float64(8-precision))
}

// FormatBTC renders a renormalized integer-scaled value as the canonical
// human string: divided by 1e8 with exactly 8 decimal places.
func FormatBTC(val float64) string {
	return strconv.FormatFloat(val/satoshisPerBTC, 'f', 8, 64)
}

// ParseBTC is the inverse of FormatBTC: it parses the human string back to
// the integer-scaled value.
func ParseBTC(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return f * satoshisPerBTC, nil
}

// Median returns the median of the sorted input. For an even number of
// elements it averages the two middle values; an empty input yields 0.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[(n-1)/2]
}

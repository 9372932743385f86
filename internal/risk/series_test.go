package risk

import (
	"time"

	"RiskSentinel/internal/model"
)

var seriesStart = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

// seriesFromCloses builds a series with opens equal to the prior close and
// constant volume, one session per calendar day.
func seriesFromCloses(closes []float64) *model.PriceSeries {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = model.OHLCV{
			Time:   seriesStart.AddDate(0, 0, i),
			Open:   open,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return model.SeriesFromBars("TEST", bars)
}

func flatCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

// linear returns n closes stepping evenly from `from` (exclusive) to `to` (inclusive).
func linear(from, to float64, n int) []float64 {
	out := make([]float64, n)
	for k := 1; k <= n; k++ {
		out[k-1] = from + (to-from)*float64(k)/float64(n)
	}
	return out
}

// risingCloses returns n closes from 50 to 100 inclusive.
func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 50 + 50*float64(i)/float64(n-1)
	}
	return out
}

// alternating returns n closes that move by +step, -step, +step ... from start.
func alternating(start, step float64, n int) []float64 {
	out := make([]float64, n)
	c := start
	for i := range out {
		if i%2 == 0 {
			c *= 1 + step
		} else {
			c *= 1 - step
		}
		out[i] = c
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

package collector

import (
	"context"
	"sort"

	"RiskSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}

// normalizeBars sorts bars chronologically, drops bars without a positive close
// and keeps only the latest bar for a repeated timestamp (Yahoo's live bar).
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		if len(out) > 0 && !b.Time.After(out[len(out)-1].Time) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// trimBars keeps the most recent `days` bars.
func trimBars(bars []model.OHLCV, days int) []model.OHLCV {
	if days > 0 && len(bars) > days {
		return bars[len(bars)-days:]
	}
	return bars
}

// Package risk derives the descriptive risk panel from a daily price series.
// Every function here is pure: no I/O, no logging, no shared state.
package risk

import (
	"math"

	"github.com/dustin/go-humanize"

	"RiskSentinel/internal/model"
)

// neutralPercentile is substituted for any percentile whose source is unavailable.
const neutralPercentile = 50.0

// percentileLevel maps a percentile rank to a level using strict upper thresholds.
func percentileLevel(pctl, high, elevated float64) model.Level {
	switch {
	case pctl > high:
		return model.LevelHigh
	case pctl > elevated:
		return model.LevelElevated
	default:
		return model.LevelLow
	}
}

// percentileOr returns r's percentile, or def when r is nil or carries none.
func percentileOr(r *model.IndicatorResult, def float64) float64 {
	if r == nil || r.Percentile == nil {
		return def
	}
	return *r.Percentile
}

// metricOr returns r's metric, or def when r is nil or carries none.
func metricOr(r *model.IndicatorResult, def float64) float64 {
	if r == nil || r.Metric == nil {
		return def
	}
	return *r.Metric
}

func floatPtr(v float64) *float64 { return &v }

// ordinal renders a 0-100 percentile as "87th".
func ordinal(pctl float64) string {
	return humanize.Ordinal(int(math.Round(pctl)))
}

// relativeDistance returns (price-base)/base, or 0 for a zero base.
func relativeDistance(price, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (price - base) / base
}

func aboveBelow(v float64) string {
	if v < 0 {
		return "below"
	}
	return "above"
}

// optional wraps an indicator result so absent ones read as nil.
func optional(r model.IndicatorResult, ok bool) *model.IndicatorResult {
	if !ok {
		return nil
	}
	return &r
}

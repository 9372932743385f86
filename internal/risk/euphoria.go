package risk

import (
	"fmt"

	"RiskSentinel/internal/calculator"
	"RiskSentinel/internal/model"
)

const (
	euphoriaMinSessions = 200
	euphoriaHigh        = 75
	euphoriaElevated    = 55

	euphoriaWeightRSI   = 0.40
	euphoriaWeightTrend = 0.35
	euphoriaWeightVol   = 0.25
)

// EuphoriaMeter blends RSI(14) with the trend-distance and volatility
// percentiles. A nil or unavailable input counts as the neutral 50.
func EuphoriaMeter(s *model.PriceSeries, trend, volatility *model.IndicatorResult) (model.IndicatorResult, bool) {
	if len(s.Closes) < euphoriaMinSessions {
		return model.IndicatorResult{}, false
	}
	rsi, err := calculator.CalculateRSI(s.Closes, calculator.DefaultRSIPeriod)
	if err != nil {
		rsi = neutralPercentile
	}
	trendPctl := percentileOr(trend, neutralPercentile)
	volPctl := percentileOr(volatility, neutralPercentile)

	score := euphoriaWeightRSI*rsi + euphoriaWeightTrend*trendPctl + euphoriaWeightVol*volPctl

	var level model.Level
	var explanation string
	switch {
	case score > euphoriaHigh:
		level = model.LevelHigh
		explanation = fmt.Sprintf("Momentum (RSI %.0f) and trend stretch point to crowded, euphoric buying.", rsi)
	case score > euphoriaElevated:
		level = model.LevelElevated
		explanation = fmt.Sprintf("Momentum (RSI %.0f) and trend stretch are running warmer than usual.", rsi)
	default:
		level = model.LevelLow
		explanation = fmt.Sprintf("Momentum (RSI %.0f) and trend stretch show no sign of excess enthusiasm.", rsi)
	}

	return model.IndicatorResult{
		Value:       fmt.Sprintf("%.0f / 100", score),
		Context:     fmt.Sprintf("RSI %.0f · trend %s · vol %s", rsi, ordinal(trendPctl), ordinal(volPctl)),
		Level:       level,
		Explanation: explanation,
		Detail:      "Weighted blend: 40% RSI(14), 35% trend-distance percentile, 25% volatility percentile.",
		Metric:      floatPtr(score),
	}, true
}

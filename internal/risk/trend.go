package risk

import (
	"fmt"
	"math"

	"RiskSentinel/internal/calculator"
	"RiskSentinel/internal/model"
)

const (
	trendMinSessions = 400
	trendHighPctl    = 85
	trendElevPctl    = 65
)

// TrendDistance measures how far price is stretched from its 200- and
// 400-session averages and ranks the MA200 distance against its own history.
func TrendDistance(s *model.PriceSeries) (model.IndicatorResult, bool) {
	closes := s.Closes
	n := len(closes)
	if n < trendMinSessions {
		return model.IndicatorResult{}, false
	}

	price := closes[n-1]
	ma200, err := calculator.MovingAverage(closes, 200)
	if err != nil {
		return model.IndicatorResult{}, false
	}
	ma400, err := calculator.MovingAverage(closes, 400)
	if err != nil {
		return model.IndicatorResult{}, false
	}
	dist200 := relativeDistance(price, ma200)
	dist400 := relativeDistance(price, ma400)

	// History of MA200 distance at every earlier index with a full average.
	means, ok := calculator.RollingMean(closes, 200)
	history := make([]float64, 0, n-200)
	for i := 200; i < n-1; i++ {
		if ok[i] {
			history = append(history, relativeDistance(closes[i], means[i]))
		}
	}
	pctl := calculator.PercentileRank(dist200, history)
	level := percentileLevel(pctl, trendHighPctl, trendElevPctl)

	pct := dist200 * 100
	var explanation string
	switch level {
	case model.LevelHigh:
		explanation = fmt.Sprintf("Price is %.1f%% %s its 200-day average, more stretched than %.0f%% of its own history.",
			math.Abs(pct), aboveBelow(pct), pctl)
	case model.LevelElevated:
		explanation = fmt.Sprintf("Price is %.1f%% %s its 200-day average, above the typical range for this instrument.",
			math.Abs(pct), aboveBelow(pct))
	default:
		explanation = fmt.Sprintf("Price is %.1f%% %s its 200-day average, within its normal historical range.",
			math.Abs(pct), aboveBelow(pct))
	}

	return model.IndicatorResult{
		Value:       fmt.Sprintf("%+.1f%% vs MA200", pct),
		Context:     fmt.Sprintf("%s percentile · MA400 %+.1f%%", ordinal(pctl), dist400*100),
		Level:       level,
		Explanation: explanation,
		Detail: fmt.Sprintf("Distance of the last close from the 200- and 400-session simple moving averages. "+
			"The percentile ranks today's MA200 distance against %d earlier sessions that had a full 200-session average.", len(history)),
		Percentile: floatPtr(pctl),
		Metric:     floatPtr(pct),
	}, true
}

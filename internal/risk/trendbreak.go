package risk

import (
	"fmt"

	"RiskSentinel/internal/calculator"
	"RiskSentinel/internal/model"
)

const (
	trendBreakMinSessions = 200
	// crossWatchSpread is how close MA50 may sit above MA200 before a cross is "on watch".
	crossWatchSpread = 0.02
)

// TrendBreak compares price against the 50/100/200-session averages and flags
// death crosses. Conditions are evaluated in priority order; the first match wins.
func TrendBreak(s *model.PriceSeries) (model.IndicatorResult, bool) {
	closes := s.Closes
	n := len(closes)
	if n < trendBreakMinSessions {
		return model.IndicatorResult{}, false
	}

	price := closes[n-1]
	ma50, err := calculator.MovingAverage(closes, 50)
	if err != nil {
		return model.IndicatorResult{}, false
	}
	ma100, err := calculator.MovingAverage(closes, 100)
	if err != nil {
		return model.IndicatorResult{}, false
	}
	ma200, err := calculator.MovingAverage(closes, 200)
	if err != nil {
		return model.IndicatorResult{}, false
	}

	// Consecutive sessions closing below their own MA200, counted back from today.
	means, ok := calculator.RollingMean(closes, 200)
	streak := 0
	for i := n - 1; i >= 0 && ok[i] && closes[i] < means[i]; i-- {
		streak++
	}

	spread := relativeDistance(ma50, ma200)

	var (
		value       string
		level       model.Level
		explanation string
	)
	switch {
	case ma50 < ma200:
		value, level = "Death Cross", model.LevelHigh
		explanation = fmt.Sprintf("The 50-day average is %.1f%% below the 200-day average, a classic sign of a broken long-term trend.", -spread*100)
	case price < ma200:
		value, level = "Below MA200", model.LevelHigh
		explanation = fmt.Sprintf("Price has closed below its 200-day average for %d sessions.", streak)
	case price < ma100:
		value, level = "Below MA100", model.LevelElevated
		explanation = fmt.Sprintf("Price is %.1f%% below its 100-day average while still holding the 200-day.", -relativeDistance(price, ma100)*100)
	case price < ma50:
		value, level = "Below MA50", model.LevelElevated
		explanation = fmt.Sprintf("Price has slipped %.1f%% below its 50-day average; the longer averages still hold.", -relativeDistance(price, ma50)*100)
	case ma50 > ma200 && spread <= crossWatchSpread:
		value, level = "Cross Watch", model.LevelElevated
		explanation = fmt.Sprintf("The 50-day average is only %.1f%% above the 200-day; a death cross would follow if it keeps converging.", spread*100)
	default:
		value, level = "Healthy Uptrend", model.LevelLow
		explanation = "Price is at or above its 50, 100 and 200-day averages with no death cross."
	}

	return model.IndicatorResult{
		Value:       value,
		Context:     fmt.Sprintf("MA50 %+.1f%% vs MA200 · %d sessions below MA200", spread*100, streak),
		Level:       level,
		Explanation: explanation,
		Detail: "Compares the last close with its 50, 100 and 200-session simple moving averages. " +
			"A death cross is the 50-session average below the 200-session average; " +
			"the watch state fires when MA50 is above MA200 by 2% or less.",
		Metric: floatPtr(float64(streak)),
	}, true
}

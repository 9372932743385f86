package risk

import (
	"fmt"

	"RiskSentinel/internal/calculator"
	"RiskSentinel/internal/model"
)

const (
	volatilityMinSessions = 200
	volatilityWindow      = 20
	volatilityHighPctl    = 80
	volatilityElevPctl    = 60
)

// Volatility annualizes the trailing 20-session return stddev and ranks it
// against every earlier 20-session window.
func Volatility(s *model.PriceSeries) (model.IndicatorResult, bool) {
	if len(s.Closes) < volatilityMinSessions {
		return model.IndicatorResult{}, false
	}
	returns := calculator.DailyReturns(s.Closes)
	m := len(returns)

	current := calculator.AnnualizedVolatility(returns[m-volatilityWindow:])
	history := make([]float64, 0, m-volatilityWindow)
	for end := volatilityWindow; end < m; end++ {
		history = append(history, calculator.AnnualizedVolatility(returns[end-volatilityWindow:end]))
	}
	pctl := calculator.PercentileRank(current, history)
	level := percentileLevel(pctl, volatilityHighPctl, volatilityElevPctl)

	var explanation string
	switch level {
	case model.LevelHigh:
		explanation = fmt.Sprintf("Daily swings annualize to %.1f%%, rougher than %.0f%% of past 20-day stretches.", current, pctl)
	case model.LevelElevated:
		explanation = fmt.Sprintf("Volatility of %.1f%% is above this instrument's typical range.", current)
	default:
		explanation = fmt.Sprintf("Volatility of %.1f%% is within the calmer part of this instrument's history.", current)
	}

	return model.IndicatorResult{
		Value:       fmt.Sprintf("%.1f%%", current),
		Context:     fmt.Sprintf("%s percentile vs %d windows", ordinal(pctl), len(history)),
		Level:       level,
		Explanation: explanation,
		Detail: "Sample standard deviation of the last 20 daily returns, annualized with the square root of 252. " +
			"Ranked against the same measurement over every earlier 20-session window.",
		Percentile: floatPtr(pctl),
		Metric:     floatPtr(current),
	}, true
}

package risk

import (
	"fmt"

	"RiskSentinel/internal/calculator"
	"RiskSentinel/internal/model"
)

const (
	crashMinSessions = 200
	crashWindow      = 30
	crashThreshold   = -0.02
	crashHighPctl    = 80
	crashElevPctl    = 60
)

// CrashCluster counts sessions down 2% or more in the trailing 30 sessions and
// ranks the count against every earlier 30-session window.
func CrashCluster(s *model.PriceSeries) (model.IndicatorResult, bool) {
	if len(s.Closes) < crashMinSessions {
		return model.IndicatorResult{}, false
	}
	returns := calculator.DailyReturns(s.Closes)
	m := len(returns)

	crash := make([]int, m)
	for i, r := range returns {
		if r <= crashThreshold {
			crash[i] = 1
		}
	}

	// Rolling counts for windows ending before the current one.
	history := make([]float64, 0, m-crashWindow)
	count := 0
	for i := 0; i < m; i++ {
		count += crash[i]
		if i >= crashWindow {
			count -= crash[i-crashWindow]
		}
		if i >= crashWindow-1 && i < m-1 {
			history = append(history, float64(count))
		}
	}
	current := 0
	for i := m - crashWindow; i < m; i++ {
		current += crash[i]
	}

	pctl := calculator.PercentileRank(float64(current), history)
	level := percentileLevel(pctl, crashHighPctl, crashElevPctl)

	var explanation string
	switch {
	case current == 0:
		explanation = "No session in the last 30 fell by 2% or more."
	case level == model.LevelLow:
		explanation = fmt.Sprintf("%d sharp down days in the last 30 sessions is ordinary for this instrument.", current)
	default:
		explanation = fmt.Sprintf("%d sharp down days in the last 30 sessions is more than in %.0f%% of past months.", current, pctl)
	}

	return model.IndicatorResult{
		Value:       fmt.Sprintf("%d in 30d", current),
		Context:     fmt.Sprintf("%s percentile vs %d windows", ordinal(pctl), len(history)),
		Level:       level,
		Explanation: explanation,
		Detail: "Number of sessions with a daily return of -2% or worse within the trailing 30 sessions, " +
			"ranked against the same count over every earlier 30-session window.",
		Percentile: floatPtr(pctl),
		Metric:     floatPtr(float64(current)),
	}, true
}

package risk

import (
	"fmt"
	"math"

	"RiskSentinel/internal/calculator"
	"RiskSentinel/internal/model"
)

const (
	gapMinSessions = 200
	gapWindow      = 20
	gapHighPctl    = 80
	gapElevPctl    = 60
)

// GapRisk averages the absolute overnight gap (open vs prior close) over the
// trailing 20 sessions and ranks it against earlier 20-session windows.
// Sessions with a missing (zero) open invalidate every window that contains
// them; when the current window is invalid the indicator is unavailable.
func GapRisk(s *model.PriceSeries) (model.IndicatorResult, bool) {
	closes, opens := s.Closes, s.Opens
	n := len(closes)
	if n < gapMinSessions || len(opens) != n {
		return model.IndicatorResult{}, false
	}

	// gaps[i] is the gap into session i; valid[0] is always false.
	gaps := make([]float64, n)
	valid := make([]bool, n)
	for i := 1; i < n; i++ {
		if opens[i] > 0 && closes[i-1] > 0 {
			gaps[i] = math.Abs(opens[i]-closes[i-1]) / closes[i-1]
			valid[i] = true
		}
	}

	history := make([]float64, 0, n)
	var (
		sum     float64
		invalid int
		current float64
		haveCur bool
	)
	for i := 1; i < n; i++ {
		sum += gaps[i]
		if !valid[i] {
			invalid++
		}
		if i > gapWindow {
			sum -= gaps[i-gapWindow]
			if !valid[i-gapWindow] {
				invalid--
			}
		}
		if i < gapWindow || invalid > 0 {
			continue
		}
		avg := sum / gapWindow
		if i == n-1 {
			current, haveCur = avg, true
		} else {
			history = append(history, avg)
		}
	}
	if !haveCur {
		return model.IndicatorResult{}, false
	}

	pctl := calculator.PercentileRank(current, history)
	level := percentileLevel(pctl, gapHighPctl, gapElevPctl)
	pct := current * 100

	var explanation string
	switch level {
	case model.LevelHigh:
		explanation = fmt.Sprintf("Overnight gaps average %.2f%%, wider than %.0f%% of past 20-day stretches.", pct, pctl)
	case model.LevelElevated:
		explanation = fmt.Sprintf("Overnight gaps of %.2f%% on average are wider than usual.", pct)
	default:
		explanation = fmt.Sprintf("Overnight gaps of %.2f%% on average are in line with history.", pct)
	}

	return model.IndicatorResult{
		Value:       fmt.Sprintf("%.2f%%", pct),
		Context:     fmt.Sprintf("%s percentile vs %d windows", ordinal(pctl), len(history)),
		Level:       level,
		Explanation: explanation,
		Detail: "Mean absolute gap between each session's open and the previous close over the last 20 sessions, " +
			"ranked against every earlier 20-session window with valid opens.",
		Percentile: floatPtr(pctl),
		Metric:     floatPtr(pct),
	}, true
}

package risk

import (
	"fmt"
	"math"

	"RiskSentinel/internal/calculator"
	"RiskSentinel/internal/model"
)

const (
	drawdownWindow  = 252
	drawdownHighPct = 20
	drawdownElevPct = 10
)

// DrawdownPressure reports the decline from the trailing 252-session high and
// the worst peak-to-trough drawdown inside that same window.
func DrawdownPressure(s *model.PriceSeries) (model.IndicatorResult, bool) {
	closes := s.Closes
	n := len(closes)
	if n < drawdownWindow {
		return model.IndicatorResult{}, false
	}
	high, err := calculator.WindowHigh(closes, drawdownWindow)
	if err != nil || high <= 0 {
		return model.IndicatorResult{}, false
	}
	window := closes[n-drawdownWindow:]
	price := closes[n-1]

	ddPct := relativeDistance(price, high) * 100
	worstPct := calculator.MaxDrawdown(window) * 100
	level := drawdownLevel(ddPct)

	var explanation string
	switch {
	case level == model.LevelHigh:
		explanation = fmt.Sprintf("Price is %.1f%% below its 52-week high, deep enough to count as a bear-market decline.", math.Abs(ddPct))
	case level == model.LevelElevated:
		explanation = fmt.Sprintf("Price is %.1f%% below its 52-week high, in correction territory.", math.Abs(ddPct))
	case ddPct == 0:
		explanation = "Price is at its 52-week high."
	default:
		explanation = fmt.Sprintf("Price is %.1f%% below its 52-week high, a routine pullback.", math.Abs(ddPct))
	}

	return model.IndicatorResult{
		Value:       fmt.Sprintf("%.1f%%", ddPct),
		Context:     fmt.Sprintf("52w high %.2f · worst %.1f%%", high, worstPct),
		Level:       level,
		Explanation: explanation,
		Detail: "Decline of the last close from the highest close of the trailing 252 sessions, " +
			"alongside the worst peak-to-trough drawdown inside that window.",
		Metric: floatPtr(ddPct),
	}, true
}

func drawdownLevel(ddPct float64) model.Level {
	switch abs := math.Abs(ddPct); {
	case abs > drawdownHighPct:
		return model.LevelHigh
	case abs > drawdownElevPct:
		return model.LevelElevated
	default:
		return model.LevelLow
	}
}

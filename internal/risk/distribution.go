package risk

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"RiskSentinel/internal/calculator"
	"RiskSentinel/internal/model"
)

const (
	distributionMinSessions = 200
	distributionWindow      = 20
	distributionHigh        = 6
	distributionElevated    = 4
)

// DistributionDays counts sessions in the last 20 where the close fell on
// volume above the 20-session average. Requires non-zero volumes in the window.
func DistributionDays(s *model.PriceSeries) (model.IndicatorResult, bool) {
	closes, volumes := s.Closes, s.Volumes
	n := len(closes)
	if n < distributionMinSessions || len(volumes) != n {
		return model.IndicatorResult{}, false
	}
	window := volumes[n-distributionWindow:]
	for _, v := range window {
		if v <= 0 {
			return model.IndicatorResult{}, false
		}
	}
	avgVol := calculator.Mean(window)

	count := 0
	for i := n - distributionWindow; i < n; i++ {
		if closes[i] < closes[i-1] && volumes[i] > avgVol {
			count++
		}
	}

	var level model.Level
	var explanation string
	switch {
	case count >= distributionHigh:
		level = model.LevelHigh
		explanation = fmt.Sprintf("%d of the last 20 sessions closed lower on heavier-than-average volume, a pattern of sustained selling.", count)
	case count >= distributionElevated:
		level = model.LevelElevated
		explanation = fmt.Sprintf("%d of the last 20 sessions closed lower on heavier-than-average volume.", count)
	case count == 0:
		level = model.LevelLow
		explanation = "No session in the last 20 closed lower on above-average volume."
	default:
		level = model.LevelLow
		explanation = fmt.Sprintf("Only %d of the last 20 sessions closed lower on above-average volume.", count)
	}

	return model.IndicatorResult{
		Value:       fmt.Sprintf("%d of 20", count),
		Context:     fmt.Sprintf("avg volume %s", humanize.Comma(int64(math.Round(avgVol)))),
		Level:       level,
		Explanation: explanation,
		Detail: "A distribution day is a session that closes below the prior close on volume above the " +
			"20-session average volume. Six or more in 20 sessions is read as high, four or more as elevated.",
		Metric: floatPtr(float64(count)),
	}, true
}

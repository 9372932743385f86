package risk

import (
	"fmt"
	"math"

	"RiskSentinel/internal/model"
)

// Weights of the risk temperature blend; they sum to 1.
const (
	tempWeightVolatility = 0.20
	tempWeightTrend      = 0.15
	tempWeightEuphoria   = 0.20
	tempWeightCrash      = 0.15
	tempWeightTrendBreak = 0.15
	tempWeightDrawdown   = 0.15

	tempHigh     = 70
	tempElevated = 45
)

// TemperatureInputs are the six readings the risk temperature is built from.
type TemperatureInputs struct {
	VolatilityPercentile float64
	TrendPercentile      float64
	EuphoriaScore        float64
	CrashPercentile      float64
	DrawdownPct          float64
	TrendBreak           model.Level
}

// DefaultTemperatureInputs returns the neutral value for every input.
func DefaultTemperatureInputs() TemperatureInputs {
	return TemperatureInputs{
		VolatilityPercentile: neutralPercentile,
		TrendPercentile:      neutralPercentile,
		EuphoriaScore:        neutralPercentile,
		CrashPercentile:      neutralPercentile,
		DrawdownPct:          0,
		TrendBreak:           model.LevelLow,
	}
}

// TemperatureInputsFrom fills inputs from available indicator results keyed by
// panel name; missing ones keep their neutral default.
func TemperatureInputsFrom(results map[string]model.IndicatorResult) TemperatureInputs {
	in := DefaultTemperatureInputs()
	get := func(name string) *model.IndicatorResult {
		r, ok := results[name]
		return optional(r, ok)
	}
	in.VolatilityPercentile = percentileOr(get(model.NameVolatility), in.VolatilityPercentile)
	in.TrendPercentile = percentileOr(get(model.NameTrend), in.TrendPercentile)
	in.EuphoriaScore = metricOr(get(model.NameEuphoria), in.EuphoriaScore)
	in.CrashPercentile = percentileOr(get(model.NameCrash), in.CrashPercentile)
	in.DrawdownPct = metricOr(get(model.NameDrawdown), in.DrawdownPct)
	if tb := get(model.NameTrendBreak); tb != nil {
		in.TrendBreak = tb.Level
	}
	return in
}

var trendBreakScores = map[model.Level]float64{
	model.LevelHigh:     85,
	model.LevelElevated: 60,
	model.LevelLow:      30,
}

func drawdownScore(ddPct float64) float64 {
	switch abs := math.Abs(ddPct); {
	case abs > 20:
		return 80
	case abs > 10:
		return 60
	default:
		return 30
	}
}

// TemperatureScore is the weighted 0-100 blend behind RiskTemperature.
func TemperatureScore(in TemperatureInputs) float64 {
	tb, ok := trendBreakScores[in.TrendBreak]
	if !ok {
		tb = trendBreakScores[model.LevelLow]
	}
	return tempWeightVolatility*in.VolatilityPercentile +
		tempWeightTrend*in.TrendPercentile +
		tempWeightEuphoria*in.EuphoriaScore +
		tempWeightCrash*in.CrashPercentile +
		tempWeightTrendBreak*tb +
		tempWeightDrawdown*drawdownScore(in.DrawdownPct)
}

// RiskTemperature is the top-level composite of the panel.
func RiskTemperature(in TemperatureInputs) model.IndicatorResult {
	score := TemperatureScore(in)

	var (
		label       string
		level       model.Level
		explanation string
	)
	switch {
	case score > tempHigh:
		label, level = "High", model.LevelHigh
		explanation = "Several independent gauges are stretched at once; conditions resemble past high-risk periods."
	case score > tempElevated:
		label, level = "Elevated", model.LevelElevated
		explanation = "Some gauges are running above their historical norms."
	default:
		label, level = "Low", model.LevelLow
		explanation = "Volatility, trend, momentum and drawdown readings are broadly calm."
	}

	return model.IndicatorResult{
		Value: fmt.Sprintf("%.0f · %s", score, label),
		Context: fmt.Sprintf("vol %s · trend %s · euphoria %.0f · crash %s · drawdown %.1f%%",
			ordinal(in.VolatilityPercentile), ordinal(in.TrendPercentile), in.EuphoriaScore,
			ordinal(in.CrashPercentile), in.DrawdownPct),
		Level:       level,
		Explanation: explanation,
		Detail: "20% volatility percentile, 15% trend-distance percentile, 20% euphoria score, " +
			"15% crash-cluster percentile, 15% trend-break score (85/60/30) and 15% drawdown score (80/60/30).",
		Metric: floatPtr(score),
	}
}

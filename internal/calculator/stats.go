package calculator

import "math"

// TradingDaysPerYear is used to annualize daily volatility.
const TradingDaysPerYear = 252

// DailyReturns returns the n-1 simple returns (c[i]-c[i-1])/c[i-1].
// A zero previous close yields a zero return.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return []float64{}
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		out[i-1] = (closes[i] - prev) / prev
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation (n-1 denominator); 0 when n < 2.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSquares := 0.0
	for _, v := range values {
		d := v - mean
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

// AnnualizedVolatility converts daily returns to an annualized percentage.
func AnnualizedVolatility(returns []float64) float64 {
	return StdDev(returns) * math.Sqrt(TradingDaysPerYear) * 100
}

// PercentileRank returns the share of history strictly below value, scaled to 0-100.
// An empty history yields the neutral 50.
func PercentileRank(value float64, history []float64) float64 {
	if len(history) == 0 {
		return 50
	}
	below := 0
	for _, h := range history {
		if h < value {
			below++
		}
	}
	return float64(below) / float64(len(history)) * 100
}

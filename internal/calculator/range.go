package calculator

import (
	"errors"
	"math"
)

// WindowHigh returns the highest value among the last `window` values.
func WindowHigh(values []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if len(values) < window {
		return 0, ErrInsufficientData
	}
	high := math.Inf(-1)
	for i := len(values) - window; i < len(values); i++ {
		if values[i] > high {
			high = values[i]
		}
	}
	return high, nil
}

// MaxDrawdown returns the worst peak-to-trough decline within values as a
// non-positive fraction (e.g. -0.18 for an 18% drawdown).
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (v - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}

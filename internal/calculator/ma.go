package calculator

import "errors"

// ErrInsufficientData is returned when a series is shorter than a computation needs.
var ErrInsufficientData = errors.New("not enough data")

// MovingAverage computes the simple moving average of the last `period` values.
func MovingAverage(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// RollingMean returns the `period`-wide simple moving average ending at every
// index. Entries before index period-1 are left at zero; check ok[i] before use.
func RollingMean(values []float64, period int) (means []float64, ok []bool) {
	means = make([]float64, len(values))
	ok = make([]bool, len(values))
	if period <= 0 {
		return means, ok
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			means[i] = sum / float64(period)
			ok[i] = true
		}
	}
	return means, ok
}

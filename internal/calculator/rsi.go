package calculator

import "errors"

// DefaultRSIPeriod is the classic 14-session lookback.
const DefaultRSIPeriod = 14

// CalculateRSI computes RSI over the trailing `period` daily differences using
// simple averages of gains and losses (no Wilder smoothing across the history).
// Requires period+1 closes. Returns 100 when the average loss is zero.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return 0, ErrInsufficientData
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}

package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSeries is returned by PriceSeries.Validate.
var ErrInvalidSeries = errors.New("invalid price series")

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds one instrument's daily history in column form, oldest first.
// It is treated as immutable while a panel is computed.
type PriceSeries struct {
	Symbol  string      `json:"symbol"`
	Dates   []time.Time `json:"dates"`
	Opens   []float64   `json:"opens"`
	Highs   []float64   `json:"highs"`
	Lows    []float64   `json:"lows"`
	Closes  []float64   `json:"closes"`
	Volumes []float64   `json:"volumes"`
}

// SeriesFromBars converts chronologically sorted bars into a PriceSeries.
func SeriesFromBars(symbol string, bars []OHLCV) *PriceSeries {
	n := len(bars)
	s := &PriceSeries{
		Symbol:  symbol,
		Dates:   make([]time.Time, n),
		Opens:   make([]float64, n),
		Highs:   make([]float64, n),
		Lows:    make([]float64, n),
		Closes:  make([]float64, n),
		Volumes: make([]float64, n),
	}
	for i, b := range bars {
		s.Dates[i] = b.Time
		s.Opens[i] = b.Open
		s.Highs[i] = b.High
		s.Lows[i] = b.Low
		s.Closes[i] = b.Close
		s.Volumes[i] = b.Volume
	}
	return s
}

// Len returns the number of sessions.
func (s *PriceSeries) Len() int { return len(s.Closes) }

// LastClose returns the most recent close, or 0 for an empty series.
func (s *PriceSeries) LastClose() float64 {
	if len(s.Closes) == 0 {
		return 0
	}
	return s.Closes[len(s.Closes)-1]
}

// LastDate returns the most recent session date, or the zero time.
func (s *PriceSeries) LastDate() time.Time {
	if len(s.Dates) == 0 {
		return time.Time{}
	}
	return s.Dates[len(s.Dates)-1]
}

// Validate checks the structural invariants a data source must guarantee:
// equal column lengths, positive closes and strictly increasing dates.
// Zero opens or volumes are allowed; the indicators that need them self-gate.
func (s *PriceSeries) Validate() error {
	n := len(s.Closes)
	if len(s.Dates) != n || len(s.Opens) != n || len(s.Highs) != n || len(s.Lows) != n || len(s.Volumes) != n {
		return fmt.Errorf("%w: column lengths differ (closes=%d dates=%d opens=%d highs=%d lows=%d volumes=%d)",
			ErrInvalidSeries, n, len(s.Dates), len(s.Opens), len(s.Highs), len(s.Lows), len(s.Volumes))
	}
	for i, c := range s.Closes {
		if c <= 0 {
			return fmt.Errorf("%w: non-positive close %.4f at index %d", ErrInvalidSeries, c, i)
		}
		if v := s.Volumes[i]; v < 0 {
			return fmt.Errorf("%w: negative volume %.0f at index %d", ErrInvalidSeries, v, i)
		}
		if i > 0 && !s.Dates[i].After(s.Dates[i-1]) {
			return fmt.Errorf("%w: dates not strictly increasing at index %d", ErrInvalidSeries, i)
		}
	}
	return nil
}

package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"RiskSentinel/internal/model"
)

// MockFetcher returns controllable synthetic data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	End       time.Time // last bar date; defaults to today (UTC midnight)
	Err       error
	Calls     atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return generateMockBars(m.Price, days, end), nil
}

// generateMockBars builds a slow uptrend with a 60-session oscillation so
// every indicator has something to read.
func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	bars := make([]model.OHLCV, count)
	prev := basePrice
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.0005) * (1 + 0.04*math.Sin(float64(i)*2*math.Pi/60))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   prev,
			High:   math.Max(prev, p) * 1.003,
			Low:    math.Min(prev, p) * 0.997,
			Close:  p,
			Volume: 1000000 + float64(i%7)*50000,
		}
		prev = p
	}
	return bars
}

// Collector fetches daily history for a symbol and turns it into a validated
// PriceSeries, consulting the series cache first.
type Collector struct {
	Fetcher      Fetcher
	Cache        Cache
	HistoryDays  int
	Retries      int
	RetryBackoff time.Duration
}

// NewCollector creates a Collector. cache may be nil.
func NewCollector(fetcher Fetcher, cache Cache, historyDays int) *Collector {
	if historyDays <= 0 {
		historyDays = 1300
	}
	return &Collector{
		Fetcher:      fetcher,
		Cache:        cache,
		HistoryDays:  historyDays,
		Retries:      3,
		RetryBackoff: 2 * time.Second,
	}
}

// Collect returns the daily series for symbol.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := CacheKey(symbol, c.HistoryDays)

	if c.Cache != nil {
		s, err := c.Cache.Get(ctx, key)
		if err == nil {
			log.Debug().Str("symbol", symbol).Int("sessions", s.Len()).Msg("series cache hit")
			return s, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Warn().Err(err).Str("symbol", symbol).Msg("series cache read failed")
		}
	}

	bars, err := c.fetchWithRetry(ctx, symbol)
	if err != nil {
		return nil, err
	}

	s := model.SeriesFromBars(symbol, bars)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s series from %s: %w", symbol, c.Fetcher.Name(), err)
	}

	if c.Cache != nil {
		if err := c.Cache.Set(ctx, key, s); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("series cache write failed")
		}
	}
	log.Info().
		Str("symbol", symbol).
		Str("source", c.Fetcher.Name()).
		Int("sessions", s.Len()).
		Float64("last_close", s.LastClose()).
		Msg("series collected")
	return s, nil
}

func (c *Collector) fetchWithRetry(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	attempts := c.Retries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.RetryBackoff * time.Duration(1<<(attempt-1))
			log.Warn().Err(lastErr).Str("symbol", symbol).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying fetch")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.HistoryDays)
		if err == nil {
			return bars, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("fetch %s daily bars after %d attempts: %w", symbol, attempts, lastErr)
}

// Invalidate drops the cached series for symbol so the next Collect refetches.
func (c *Collector) Invalidate(ctx context.Context, symbol string) error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Invalidate(ctx, CacheKey(strings.ToUpper(strings.TrimSpace(symbol)), c.HistoryDays))
}

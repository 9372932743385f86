package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskSentinel/internal/model"
)

func TestIndicators_FlatSeries(t *testing.T) {
	s := seriesFromCloses(flatCloses(400, 100))

	trend, ok := TrendDistance(s)
	require.True(t, ok)
	assert.InDelta(t, 0, *trend.Metric, 1e-9)
	assert.Equal(t, model.LevelLow, trend.Level)

	vol, ok := Volatility(s)
	require.True(t, ok)
	assert.InDelta(t, 0, *vol.Metric, 1e-9)
	assert.Equal(t, model.LevelLow, vol.Level)

	dd, ok := DrawdownPressure(s)
	require.True(t, ok)
	assert.InDelta(t, 0, *dd.Metric, 1e-9)
	assert.Equal(t, "Price is at its 52-week high.", dd.Explanation)

	tb, ok := TrendBreak(s)
	require.True(t, ok)
	assert.Equal(t, "Healthy Uptrend", tb.Value)
	assert.Equal(t, model.LevelLow, tb.Level)

	corr, ok := CorrectionClock(s)
	require.True(t, ok)
	assert.Equal(t, "At Peak", corr.Value)
	assert.Equal(t, model.LevelLow, corr.Level)
}

func TestIndicators_MinimumHistory(t *testing.T) {
	tests := []struct {
		name string
		min  int
		fn   func(*model.PriceSeries) (model.IndicatorResult, bool)
	}{
		{"trend distance", 400, TrendDistance},
		{"trend break", 200, TrendBreak},
		{"volatility", 200, Volatility},
		{"crash cluster", 200, CrashCluster},
		{"drawdown pressure", 252, DrawdownPressure},
		{"gap risk", 200, GapRisk},
		{"distribution days", 200, DistributionDays},
		{"correction clock", 365, CorrectionClock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.fn(seriesFromCloses(flatCloses(tt.min-1, 100)))
			assert.False(t, ok, "one session short of the minimum")
			_, ok = tt.fn(seriesFromCloses(flatCloses(tt.min, 100)))
			assert.True(t, ok, "exactly the minimum")
		})
	}
}

func TestTrackCorrections_DeclineAndRecovery(t *testing.T) {
	closes := concat(
		flatCloses(100, 100),
		linear(100, 75, 130),
		linear(75, 100, 130),
		flatCloses(40, 100),
	)
	require.Len(t, closes, 400)

	h := TrackCorrections(closes)
	assert.Equal(t, 100.0, h.Peak)
	assert.Equal(t, []int{359}, h.Completions[0])
	assert.Equal(t, []int{359}, h.Completions[1], "one completed 20% correction, resolved on the return to the old peak")
	assert.Empty(t, h.Completions[2])
	assert.Equal(t, []bool{false, false, false}, h.Active)

	corr, ok := CorrectionClock(seriesFromCloses(closes))
	require.True(t, ok)
	assert.Equal(t, "At Peak", corr.Value)
	assert.Equal(t, "last 10%+ correction ended 40 sessions ago", corr.Context)
	assert.Contains(t, corr.Detail, "20%+ ×1")
}

func TestTrackCorrections_NoCompletionWithoutCorrection(t *testing.T) {
	// A 9% dip and recovery never opens a 10% correction.
	closes := concat(flatCloses(10, 100), linear(100, 91, 10), linear(91, 100, 10), flatCloses(5, 101))
	h := TrackCorrections(closes)
	for k := range CorrectionThresholds {
		assert.Empty(t, h.Completions[k])
		assert.False(t, h.Active[k])
	}
	assert.Equal(t, 101.0, h.Peak)
}

func TestTrackCorrections_CompletionFollowsPeakExceeded(t *testing.T) {
	closes := concat(flatCloses(5, 100), linear(100, 85, 5), linear(85, 99, 5))
	h := TrackCorrections(closes)
	assert.Empty(t, h.Completions[0], "no new high yet")
	assert.True(t, h.Active[0])

	closes = append(closes, 100.5)
	h = TrackCorrections(closes)
	assert.Equal(t, []int{len(closes) - 1}, h.Completions[0])
	assert.False(t, h.Active[0])
	assert.False(t, h.Active[1])
}

func TestCorrectionClock_InProgress(t *testing.T) {
	closes := concat(risingCloses(300), linear(100, 65, 100))
	corr, ok := CorrectionClock(seriesFromCloses(closes))
	require.True(t, ok)
	assert.Equal(t, model.LevelHigh, corr.Level)
	assert.Equal(t, "-35.0% · 30% correction", corr.Value)
	assert.Equal(t, "began 14 sessions (14 days) ago · peak 100.00", corr.Context)
	assert.InDelta(t, -35.0, *corr.Metric, 1e-9)

	// A 15% decline is an elevated 10% correction.
	closes = concat(risingCloses(300), linear(100, 85, 100))
	corr, ok = CorrectionClock(seriesFromCloses(closes))
	require.True(t, ok)
	assert.Equal(t, model.LevelElevated, corr.Level)
	assert.Contains(t, corr.Value, "10% correction")
}

func TestCorrectionClock_Overdue(t *testing.T) {
	corr, ok := CorrectionClock(seriesFromCloses(risingCloses(600)))
	require.True(t, ok)
	assert.Equal(t, model.LevelElevated, corr.Level)
	assert.Equal(t, "no completed 10%+ correction in 599 sessions", corr.Context)
}

func TestTrendBreak_Priority(t *testing.T) {
	tests := []struct {
		name  string
		last  float64
		value string
		level model.Level
	}{
		{"healthy", 100.2, "Healthy Uptrend", model.LevelLow},
		{"below MA50", 93, "Below MA50", model.LevelElevated},
		{"below MA100", 88, "Below MA100", model.LevelElevated},
		{"below MA200", 80, "Below MA200", model.LevelHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closes := append(risingCloses(300), tt.last)
			r, ok := TrendBreak(seriesFromCloses(closes))
			require.True(t, ok)
			assert.Equal(t, tt.value, r.Value)
			assert.Equal(t, tt.level, r.Level)
		})
	}

	t.Run("death cross", func(t *testing.T) {
		closes := concat(risingCloses(300), linear(100, 65, 100))
		r, ok := TrendBreak(seriesFromCloses(closes))
		require.True(t, ok)
		assert.Equal(t, "Death Cross", r.Value)
		assert.Equal(t, model.LevelHigh, r.Level)
	})

	t.Run("cross watch", func(t *testing.T) {
		closes := concat(flatCloses(300, 100), flatCloses(50, 101))
		r, ok := TrendBreak(seriesFromCloses(closes))
		require.True(t, ok)
		assert.Equal(t, "Cross Watch", r.Value)
		assert.Equal(t, model.LevelElevated, r.Level)
	})
}

func TestTrendBreak_BelowStreak(t *testing.T) {
	closes := concat(risingCloses(300), []float64{80, 79, 78})
	r, ok := TrendBreak(seriesFromCloses(closes))
	require.True(t, ok)
	assert.Equal(t, 3.0, *r.Metric)
	assert.Contains(t, r.Context, "3 sessions below MA200")
}

func TestCrashCluster_ThirtyDownSessions(t *testing.T) {
	closes := flatCloses(170, 100)
	c := 100.0
	for i := 0; i < 30; i++ {
		c *= 0.97
		closes = append(closes, c)
	}
	require.Len(t, closes, 200)

	r, ok := CrashCluster(seriesFromCloses(closes))
	require.True(t, ok)
	assert.Equal(t, 30.0, *r.Metric)
	assert.Equal(t, 100.0, *r.Percentile)
	assert.Equal(t, model.LevelHigh, r.Level)
	assert.Equal(t, "30 in 30d", r.Value)
}

func TestVolatility_Spike(t *testing.T) {
	closes := concat(alternating(100, 0.005, 380), alternating(100, 0.05, 20))
	r, ok := Volatility(seriesFromCloses(closes))
	require.True(t, ok)
	assert.Greater(t, *r.Percentile, 80.0)
	assert.Equal(t, model.LevelHigh, r.Level)
}

func TestGapRisk(t *testing.T) {
	t.Run("missing opens", func(t *testing.T) {
		s := seriesFromCloses(flatCloses(400, 100))
		for i := range s.Opens {
			s.Opens[i] = 0
		}
		_, ok := GapRisk(s)
		assert.False(t, ok)
	})

	t.Run("wide recent gaps", func(t *testing.T) {
		s := seriesFromCloses(flatCloses(300, 100))
		for i := 1; i < len(s.Opens); i++ {
			s.Opens[i] = 100.1
			if i >= len(s.Opens)-20 {
				s.Opens[i] = 103
			}
		}
		r, ok := GapRisk(s)
		require.True(t, ok)
		assert.Equal(t, 100.0, *r.Percentile)
		assert.Equal(t, model.LevelHigh, r.Level)
		assert.Equal(t, "3.00%", r.Value)
	})

	t.Run("zero open outside the current window", func(t *testing.T) {
		s := seriesFromCloses(flatCloses(300, 100))
		s.Opens[100] = 0
		r, ok := GapRisk(s)
		require.True(t, ok)
		assert.Equal(t, model.LevelLow, r.Level)
	})
}

func TestDistributionDays(t *testing.T) {
	build := func(downDays int) *model.PriceSeries {
		closes := flatCloses(180, 100)
		c := 100.0
		for j := 0; j < 20; j++ {
			if j%3 == 1 && downDays > 0 {
				c--
				downDays--
			} else {
				c++
			}
			closes = append(closes, c)
		}
		s := seriesFromCloses(closes)
		for i := 181; i < len(closes); i++ {
			if closes[i] < closes[i-1] {
				s.Volumes[i] = 3000
			}
		}
		return s
	}

	tests := []struct {
		down  int
		level model.Level
	}{
		{0, model.LevelLow},
		{3, model.LevelLow},
		{4, model.LevelElevated},
		{6, model.LevelHigh},
	}
	for _, tt := range tests {
		r, ok := DistributionDays(build(tt.down))
		require.True(t, ok)
		assert.Equal(t, float64(tt.down), *r.Metric, "down days %d", tt.down)
		assert.Equal(t, tt.level, r.Level, "down days %d", tt.down)
	}

	s := build(6)
	s.Volumes[len(s.Volumes)-1] = 0
	_, ok := DistributionDays(s)
	assert.False(t, ok, "zero volume in the window disables the indicator")
}

func TestDrawdownPressure_Levels(t *testing.T) {
	tests := []struct {
		last  float64
		level model.Level
	}{
		{95, model.LevelLow},
		{89, model.LevelElevated},
		{90, model.LevelLow},
		{79, model.LevelHigh},
	}
	for _, tt := range tests {
		closes := append(flatCloses(300, 100), tt.last)
		r, ok := DrawdownPressure(seriesFromCloses(closes))
		require.True(t, ok)
		assert.Equal(t, tt.level, r.Level, "last close %.0f", tt.last)
		assert.InDelta(t, tt.last-100, *r.Metric, 1e-9)
	}
}

func TestDrawdownPressure_Explanation(t *testing.T) {
	r, ok := DrawdownPressure(seriesFromCloses(flatCloses(300, 100)))
	require.True(t, ok)
	assert.Equal(t, model.LevelLow, r.Level)
	assert.Equal(t, "Price is at its 52-week high.", r.Explanation)

	r, ok = DrawdownPressure(seriesFromCloses(append(flatCloses(300, 100), 79)))
	require.True(t, ok)
	assert.Contains(t, r.Explanation, "21.0% below its 52-week high, deep enough")

	r, ok = DrawdownPressure(seriesFromCloses(append(flatCloses(300, 100), 95)))
	require.True(t, ok)
	assert.Contains(t, r.Explanation, "a routine pullback")
}

func TestBuildPanel_ExactGate(t *testing.T) {
	p, ok := BuildPanel(seriesFromCloses(flatCloses(200, 100)))
	require.True(t, ok)
	for _, name := range []string{model.NameTrend, model.NameDrawdown, model.NameCorrection} {
		_, present := p.Get(name)
		assert.False(t, present, "%s needs more history", name)
	}
	_, present := p.Get(model.NameTemperature)
	assert.True(t, present)
}

func TestEuphoriaMeter(t *testing.T) {
	s := seriesFromCloses(risingCloses(300))

	r, ok := EuphoriaMeter(s, nil, nil)
	require.True(t, ok)
	// RSI 100 with neutral percentiles: 40 + 17.5 + 12.5.
	assert.InDelta(t, 70, *r.Metric, 1e-9)
	assert.Equal(t, model.LevelElevated, r.Level)

	hot := model.IndicatorResult{Percentile: floatPtr(100)}
	r, ok = EuphoriaMeter(s, &hot, &hot)
	require.True(t, ok)
	assert.InDelta(t, 100, *r.Metric, 1e-9)
	assert.Equal(t, model.LevelHigh, r.Level)

	cold := model.IndicatorResult{Percentile: floatPtr(0)}
	r, ok = EuphoriaMeter(s, &cold, &cold)
	require.True(t, ok)
	assert.Equal(t, model.LevelLow, r.Level)

	_, ok = EuphoriaMeter(seriesFromCloses(risingCloses(199)), nil, nil)
	assert.False(t, ok)
}

package risk

import (
	"fmt"
	"strings"

	"RiskSentinel/internal/model"
)

const (
	correctionMinSessions = 365
	// correctionOverdue is how many sessions without a resolved 10%+ correction reads as elevated.
	correctionOverdue = 500
)

// CorrectionThresholds are the drawdown depths tracked by the correction clock, shallowest first.
var CorrectionThresholds = []float64{0.10, 0.20, 0.30}

// CorrectionHistory is the result of the forward pass over a close series.
type CorrectionHistory struct {
	Peak float64 // all-time high close
	// Completions[k] lists the indexes at which a correction of at least
	// CorrectionThresholds[k] resolved by reaching a new high.
	Completions [][]int
	// Active[k] reports whether a correction of CorrectionThresholds[k] was still open at the end.
	Active []bool
}

// TrackCorrections runs the forward pass: a running peak, one in-correction
// flag per threshold, and a completion whenever a new high follows an open correction.
func TrackCorrections(closes []float64) CorrectionHistory {
	h := CorrectionHistory{
		Completions: make([][]int, len(CorrectionThresholds)),
		Active:      make([]bool, len(CorrectionThresholds)),
	}
	if len(closes) == 0 {
		return h
	}
	peak := closes[0]
	for i, c := range closes {
		if c >= peak {
			peak = c
			for k := range CorrectionThresholds {
				if h.Active[k] {
					h.Completions[k] = append(h.Completions[k], i)
					h.Active[k] = false
				}
			}
		}
		dd := (peak - c) / peak
		for k, t := range CorrectionThresholds {
			if dd >= t && !h.Active[k] {
				h.Active[k] = true
			}
		}
	}
	h.Peak = peak
	return h
}

// CorrectionClock reports whether a 10/20/30% correction is in progress and
// for how long, or how long it has been since the last one resolved.
func CorrectionClock(s *model.PriceSeries) (model.IndicatorResult, bool) {
	closes := s.Closes
	n := len(closes)
	if n < correctionMinSessions {
		return model.IndicatorResult{}, false
	}

	h := TrackCorrections(closes)
	peak := h.Peak
	if peak <= 0 {
		return model.IndicatorResult{}, false
	}

	lastPeakIdx := n - 1
	for lastPeakIdx > 0 && closes[lastPeakIdx] != peak {
		lastPeakIdx--
	}
	last := closes[n-1]
	currentDD := (peak - last) / peak

	active := -1
	for k := len(CorrectionThresholds) - 1; k >= 0; k-- {
		if currentDD >= CorrectionThresholds[k] {
			active = k
			break
		}
	}

	detail := "Tracks drawdowns from the running all-time high at 10%, 20% and 30%. " +
		"A correction completes when price makes a new high after falling at least that far. " +
		"Completed so far: " + completionSummary(h) + "."

	if active >= 0 {
		threshold := CorrectionThresholds[active]
		start := correctionStart(closes, lastPeakIdx, threshold)
		sessions := n - 1 - start
		level := model.LevelElevated
		if active == len(CorrectionThresholds)-1 {
			level = model.LevelHigh
		}
		return model.IndicatorResult{
			Value:   fmt.Sprintf("-%.1f%% · %.0f%% correction", currentDD*100, threshold*100),
			Context: fmt.Sprintf("began %s · peak %.2f", sessionsAgo(s, start, sessions), peak),
			Level:   level,
			Explanation: fmt.Sprintf("Price is %.1f%% below its all-time high of %.2f; the %.0f%% correction began %d sessions ago and no new high has been made since.",
				currentDD*100, peak, threshold*100, sessions),
			Detail: detail,
			Metric: floatPtr(-currentDD * 100),
		}, true
	}

	// No active correction: how long since the last resolved 10%+ correction.
	since := n - 1
	completed := h.Completions[0]
	if len(completed) > 0 {
		since = n - 1 - completed[len(completed)-1]
	}
	level := model.LevelLow
	if since >= correctionOverdue {
		level = model.LevelElevated
	}

	value := "At Peak"
	if currentDD > 0 {
		value = fmt.Sprintf("-%.1f%% from peak", currentDD*100)
	}
	var context, explanation string
	if len(completed) > 0 {
		context = fmt.Sprintf("last 10%%+ correction ended %d sessions ago", since)
	} else {
		context = fmt.Sprintf("no completed 10%%+ correction in %d sessions", since)
	}
	if level == model.LevelElevated {
		explanation = fmt.Sprintf("No 10%%+ correction has resolved in %d sessions; stretches this long without a reset are uncommon.", since)
	} else {
		explanation = fmt.Sprintf("Price is within %.1f%% of its high and no correction is in progress.", currentDD*100)
	}

	return model.IndicatorResult{
		Value:       value,
		Context:     context,
		Level:       level,
		Explanation: explanation,
		Detail:      detail,
		Metric:      floatPtr(-currentDD * 100),
	}, true
}

// correctionStart walks forward from the last all-time-high index with a local
// running peak and returns the first index whose drawdown from that local peak
// reaches threshold.
func correctionStart(closes []float64, from int, threshold float64) int {
	local := closes[from]
	for i := from + 1; i < len(closes); i++ {
		if closes[i] > local {
			local = closes[i]
		}
		if (local-closes[i])/local >= threshold {
			return i
		}
	}
	return len(closes) - 1
}

// sessionsAgo formats the start of a correction, adding calendar days when dates are known.
func sessionsAgo(s *model.PriceSeries, start, sessions int) string {
	if len(s.Dates) != len(s.Closes) || s.Dates[start].IsZero() {
		return fmt.Sprintf("%d sessions ago", sessions)
	}
	days := int(s.LastDate().Sub(s.Dates[start]).Hours() / 24)
	return fmt.Sprintf("%d sessions (%d days) ago", sessions, days)
}

func completionSummary(h CorrectionHistory) string {
	parts := make([]string, len(CorrectionThresholds))
	for k, t := range CorrectionThresholds {
		parts[k] = fmt.Sprintf("%.0f%%+ ×%d", t*100, len(h.Completions[k]))
	}
	return strings.Join(parts, ", ")
}

package risk

import "RiskSentinel/internal/model"

// MinPanelSessions is the history below which no panel is produced at all.
const MinPanelSessions = 200

// BuildPanel runs every indicator over the series and assembles the ordered
// panel. It returns false when the series is too short for any panel.
// Individual indicators that cannot be computed are left out silently.
func BuildPanel(s *model.PriceSeries) (*model.Panel, bool) {
	if s == nil || s.Len() < MinPanelSessions {
		return nil, false
	}

	results := make(map[string]model.IndicatorResult, len(model.PanelOrder))
	keep := func(name string, r model.IndicatorResult, ok bool) {
		if ok {
			results[name] = r
		}
	}

	trend, trendOK := TrendDistance(s)
	keep(model.NameTrend, trend, trendOK)
	vol, volOK := Volatility(s)
	keep(model.NameVolatility, vol, volOK)

	tb, ok := TrendBreak(s)
	keep(model.NameTrendBreak, tb, ok)
	crash, ok := CrashCluster(s)
	keep(model.NameCrash, crash, ok)
	dd, ok := DrawdownPressure(s)
	keep(model.NameDrawdown, dd, ok)
	corr, ok := CorrectionClock(s)
	keep(model.NameCorrection, corr, ok)
	gap, ok := GapRisk(s)
	keep(model.NameGap, gap, ok)
	dist, ok := DistributionDays(s)
	keep(model.NameDistribution, dist, ok)

	euphoria, ok := EuphoriaMeter(s, optional(trend, trendOK), optional(vol, volOK))
	keep(model.NameEuphoria, euphoria, ok)

	results[model.NameTemperature] = RiskTemperature(TemperatureInputsFrom(results))

	panel := &model.Panel{
		Symbol:    s.Symbol,
		AsOf:      s.LastDate(),
		LastClose: s.LastClose(),
		Sessions:  s.Len(),
		Entries:   make([]model.PanelEntry, 0, len(results)),
	}
	for _, name := range model.PanelOrder {
		if r, ok := results[name]; ok {
			panel.Entries = append(panel.Entries, model.PanelEntry{Name: name, Result: r})
		}
	}
	panel.Severity = ClassifySeverity(panel)
	return panel, true
}

// ClassifySeverity derives the banner from the count of elevated and high entries.
func ClassifySeverity(p *model.Panel) model.Severity {
	elevated, high := p.CountLevels()
	switch {
	case high >= 2 || (high >= 1 && elevated >= 2):
		return model.SeverityHighRisk
	case high >= 1 || elevated >= 1:
		return model.SeverityElevated
	default:
		return model.SeverityNormal
	}
}

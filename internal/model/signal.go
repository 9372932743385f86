package model

import (
	"fmt"
	"time"
)

// Level is the ordinal severity of a single indicator.
type Level int

const (
	LevelLow Level = iota
	LevelElevated
	LevelHigh
)

var levelNames = map[Level]string{
	LevelLow:      "low",
	LevelElevated: "elevated",
	LevelHigh:     "high",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// MarshalText encodes the level as its lowercase name.
func (l Level) MarshalText() ([]byte, error) {
	s, ok := levelNames[l]
	if !ok {
		return nil, fmt.Errorf("unknown level %d", int(l))
	}
	return []byte(s), nil
}

// UnmarshalText decodes a lowercase level name.
func (l *Level) UnmarshalText(b []byte) error {
	for k, v := range levelNames {
		if v == string(b) {
			*l = k
			return nil
		}
	}
	return fmt.Errorf("unknown level %q", string(b))
}

// Severity is the panel-level banner classification.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityElevated
	SeverityHighRisk
)

var severityNames = map[Severity]string{
	SeverityNormal:   "normal",
	SeverityElevated: "elevated",
	SeverityHighRisk: "high-risk",
}

func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalText encodes the severity as its banner name.
func (s Severity) MarshalText() ([]byte, error) {
	n, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(n), nil
}

// UnmarshalText decodes a banner name.
func (s *Severity) UnmarshalText(b []byte) error {
	for k, v := range severityNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", string(b))
}

// ParseSeverity parses a banner name such as "high-risk".
func ParseSeverity(name string) (Severity, error) {
	var s Severity
	err := s.UnmarshalText([]byte(name))
	return s, err
}

// IndicatorResult is the output of a single indicator or composite.
type IndicatorResult struct {
	Value       string   `json:"value"`
	Context     string   `json:"context"`
	Level       Level    `json:"level"`
	Explanation string   `json:"explanation"`
	Detail      string   `json:"detail,omitempty"`
	Percentile  *float64 `json:"percentile,omitempty"` // 0-100 rank that produced Level
	Metric      *float64 `json:"metric,omitempty"`     // headline number behind Value
}

// Stable indicator names, listed in panel order.
const (
	NameTemperature  = "temperature"
	NameTrend        = "trend"
	NameTrendBreak   = "trendBreak"
	NameVolatility   = "volatility"
	NameEuphoria     = "euphoria"
	NameCrash        = "crash"
	NameDrawdown     = "drawdown"
	NameCorrection   = "correction"
	NameGap          = "gap"
	NameDistribution = "distribution"
)

// PanelOrder is the display order of panel entries.
var PanelOrder = []string{
	NameTemperature,
	NameTrend,
	NameTrendBreak,
	NameVolatility,
	NameEuphoria,
	NameCrash,
	NameDrawdown,
	NameCorrection,
	NameGap,
	NameDistribution,
}

// PanelEntry is one named indicator in a panel.
type PanelEntry struct {
	Name   string          `json:"name"`
	Result IndicatorResult `json:"result"`
}

// Panel is the final engine output for one series.
type Panel struct {
	Symbol    string       `json:"symbol"`
	AsOf      time.Time    `json:"as_of"`
	LastClose float64      `json:"last_close"`
	Sessions  int          `json:"sessions"`
	Entries   []PanelEntry `json:"entries"`
	Severity  Severity     `json:"severity"`
}

// Get returns the entry with the given name.
func (p *Panel) Get(name string) (IndicatorResult, bool) {
	for _, e := range p.Entries {
		if e.Name == name {
			return e.Result, true
		}
	}
	return IndicatorResult{}, false
}

// CountLevels returns how many entries are elevated and high.
func (p *Panel) CountLevels() (elevated, high int) {
	for _, e := range p.Entries {
		switch e.Result.Level {
		case LevelElevated:
			elevated++
		case LevelHigh:
			high++
		}
	}
	return elevated, high
}

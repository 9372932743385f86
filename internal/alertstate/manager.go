// Package alertstate remembers the last panel severity per symbol so the bot
// only pushes a report when the banner changes.
package alertstate

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"RiskSentinel/internal/model"
)

// Manager guards the alert state and persists it after every change.
type Manager struct {
	mu       sync.Mutex
	state    State
	filePath string
}

// NewManager creates a Manager, loading state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Manager{state: state, filePath: filePath}, nil
}

// Observe records severity for symbol at time at and reports whether it
// differs from the previous observation. A symbol seen for the first time is
// compared against normal.
func (m *Manager) Observe(symbol string, severity model.Severity, at time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	prev, seen := m.state[symbol]
	previous := model.SeverityNormal
	if seen {
		previous = prev.Severity
	}
	changed := severity != previous

	next := &SymbolState{Severity: severity, Since: at, UpdatedAt: at}
	if seen && !changed {
		next.Since = prev.Since
		next.HighRiskDays = prev.HighRiskDays
	}
	if severity == model.SeverityHighRisk && (!seen || !sameDay(prev.UpdatedAt, at) || changed) {
		next.HighRiskDays++
	}
	m.state[symbol] = next

	if err := m.save(); err != nil {
		log.Error().Err(err).Str("file", m.filePath).Msg("failed to save alert state")
	}
	if changed {
		log.Info().
			Str("symbol", symbol).
			Stringer("from", previous).
			Stringer("to", severity).
			Msg("panel severity changed")
	}
	return changed
}

// Get returns a copy of the state for symbol.
func (m *Manager) Get(symbol string) (SymbolState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.state[strings.ToUpper(symbol)]
	if !ok {
		return SymbolState{}, false
	}
	return *s, true
}

// Reset forgets symbol, so its next observation is compared against normal.
func (m *Manager) Reset(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state, strings.ToUpper(symbol))
	if err := m.save(); err != nil {
		log.Error().Err(err).Str("file", m.filePath).Msg("failed to save alert state")
	}
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

package recorder

import (
	"time"

	"github.com/google/uuid"

	"RiskSentinel/internal/model"
)

// PanelSnapshot is one evaluated panel as produced by a scheduler run.
type PanelSnapshot struct {
	RunID      string
	RecordedAt time.Time
	Panel      *model.Panel
}

// SnapshotRow is a stored panel summary, newest first when listed.
type SnapshotRow struct {
	ID          int64
	RunID       string
	Symbol      string
	RecordedAt  time.Time
	AsOf        time.Time
	Severity    model.Severity
	Temperature float64
	LastClose   float64
}

// Recorder persists panel history for later analysis.
type Recorder interface {
	RecordPanel(snap *PanelSnapshot) error
	RecentSnapshots(symbol string, limit int) ([]SnapshotRow, error)
	Close() error
}

// NewRunID returns an identifier shared by every snapshot of one scheduler run.
func NewRunID() string {
	return uuid.NewString()
}

// temperatureOf extracts the composite score, or -1 when the panel has none.
func temperatureOf(p *model.Panel) float64 {
	if r, ok := p.Get(model.NameTemperature); ok && r.Metric != nil {
		return *r.Metric
	}
	return -1
}

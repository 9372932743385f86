package alertstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"RiskSentinel/internal/model"
)

// SymbolState is the last banner severity seen for one symbol.
type SymbolState struct {
	Severity model.Severity `json:"severity"`
	Since    time.Time      `json:"since"`
	// HighRiskDays counts consecutive evaluation days spent at high-risk.
	HighRiskDays int       `json:"high_risk_days"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// State maps upper-case symbols to their alert state.
type State map[string]*SymbolState

// LoadState reads alert state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return nil, err
	}
	state := State{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode alert state %s: %w", filePath, err)
	}
	return state, nil
}

// SaveState writes alert state to a JSON file via a temp file and rename.
func SaveState(filePath string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

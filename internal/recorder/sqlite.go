package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"RiskSentinel/internal/model"
)

// SQLiteRecorder persists panel history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS panel_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			as_of       INTEGER NOT NULL,
			sessions    INTEGER,
			severity    TEXT NOT NULL,
			temperature REAL,
			last_close  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON panel_snapshots(symbol, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_run ON panel_snapshots(run_id)`,

		`CREATE TABLE IF NOT EXISTS indicator_readings (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id INTEGER NOT NULL REFERENCES panel_snapshots(id) ON DELETE CASCADE,
			name        TEXT NOT NULL,
			level       TEXT NOT NULL,
			value       TEXT,
			context     TEXT,
			percentile  REAL,
			metric      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_snapshot ON indicator_readings(snapshot_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordPanel stores the panel summary and one reading per entry in a single transaction.
func (r *SQLiteRecorder) RecordPanel(snap *PanelSnapshot) error {
	if snap == nil || snap.Panel == nil {
		return fmt.Errorf("record panel: empty snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p := snap.Panel
	recordedAt := snap.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO panel_snapshots
		(run_id, symbol, timestamp, as_of, sessions, severity, temperature, last_close)
		VALUES (?,?,?,?,?,?,?,?)`,
		snap.RunID, strings.ToUpper(p.Symbol), recordedAt.Unix(), p.AsOf.Unix(), p.Sessions,
		p.Severity.String(), temperatureOf(p), p.LastClose,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	snapshotID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	for _, e := range p.Entries {
		if _, err := tx.Exec(`INSERT INTO indicator_readings
			(snapshot_id, name, level, value, context, percentile, metric)
			VALUES (?,?,?,?,?,?,?)`,
			snapshotID, e.Name, e.Result.Level.String(), e.Result.Value, e.Result.Context,
			nullable(e.Result.Percentile), nullable(e.Result.Metric),
		); err != nil {
			return fmt.Errorf("insert reading %s: %w", e.Name, err)
		}
	}
	return tx.Commit()
}

// RecentSnapshots lists the latest stored panels for symbol, newest first.
func (r *SQLiteRecorder) RecentSnapshots(symbol string, limit int) ([]SnapshotRow, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, run_id, symbol, timestamp, as_of, severity, temperature, last_close
		FROM panel_snapshots WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var (
			row         SnapshotRow
			ts, asOf    int64
			severity    string
			temperature sql.NullFloat64
		)
		if err := rows.Scan(&row.ID, &row.RunID, &row.Symbol, &ts, &asOf, &severity, &temperature, &row.LastClose); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		row.RecordedAt = time.Unix(ts, 0).UTC()
		row.AsOf = time.Unix(asOf, 0).UTC()
		row.Temperature = temperature.Float64
		if row.Severity, err = model.ParseSeverity(severity); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskSentinel/internal/alertstate"
	"RiskSentinel/internal/collector"
	"RiskSentinel/internal/model"
	"RiskSentinel/internal/recorder"
)

var evalDay = time.Date(2024, 6, 3, 22, 30, 0, 0, time.UTC)

type captureSender struct {
	messages []string
}

func (c *captureSender) SendWithRetry(_ context.Context, text string, _ int) error {
	c.messages = append(c.messages, text)
	return nil
}

func shortBars(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: evalDay.AddDate(0, 0, i-n), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	}
	return bars
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher, symbols ...string) (*Scheduler, *captureSender, *recorder.SQLiteRecorder) {
	t.Helper()
	dir := t.TempDir()
	alerts, err := alertstate.NewManager(filepath.Join(dir, "alert_state.json"))
	require.NoError(t, err)
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "risk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	col := collector.NewCollector(fetcher, collector.NewMemoryCache(time.Hour, nil), 600)
	col.Retries = 1
	sender := &captureSender{}
	s := NewScheduler(context.Background(), symbols, col, alerts, sender, rec)
	s.Now = func() time.Time { return evalDay }
	return s, sender, rec
}

func TestEvaluate_RecordsPanel(t *testing.T) {
	s, _, rec := newTestScheduler(t, &collector.MockFetcher{Price: 100, End: evalDay}, "SPX500")

	panel, err := s.Evaluate(context.Background(), "spx500")
	require.NoError(t, err)
	assert.Equal(t, "SPX500", panel.Symbol)
	assert.Equal(t, 600, panel.Sessions)
	assert.Len(t, panel.Entries, len(model.PanelOrder))

	rows, err := rec.RecentSnapshots("SPX500", 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, panel.Severity, rows[0].Severity)
}

func TestEvaluate_Errors(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{DailyData: shortBars(150)}, "QQQ")
	_, err := s.Evaluate(context.Background(), "QQQ")
	var short *InsufficientHistoryError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, 150, short.Sessions)

	s, _, _ = newTestScheduler(t, &collector.MockFetcher{Err: errors.New("down")}, "QQQ")
	_, err = s.Evaluate(context.Background(), "QQQ")
	require.Error(t, err)
	assert.False(t, errors.As(err, &short))
}

func TestDailyTask_NotifiesOnlyOnChange(t *testing.T) {
	s, sender, _ := newTestScheduler(t, &collector.MockFetcher{Price: 100, End: evalDay}, "SPX500")

	s.RunDailyNow()
	st, ok := s.Alerts.Get("SPX500")
	require.True(t, ok)
	expected := 0
	if st.Severity != model.SeverityNormal {
		expected = 1
		assert.Contains(t, sender.messages[0], "<b>SPX500</b>")
	}
	assert.Len(t, sender.messages, expected)

	s.RunDailyNow()
	assert.Len(t, sender.messages, expected, "unchanged severity is not re-sent")
}

func TestDailyTask_FetchFailureNotifies(t *testing.T) {
	s, sender, _ := newTestScheduler(t, &collector.MockFetcher{Err: errors.New("upstream down")}, "SPX500")
	s.RunDailyNow()
	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0], "upstream down")
	_, ok := s.Alerts.Get("SPX500")
	assert.False(t, ok)
}

func TestHandleCommand(t *testing.T) {
	mock := &collector.MockFetcher{Price: 100, End: evalDay}
	s, _, _ := newTestScheduler(t, mock, "SPX500", "NDX")
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/risk")
	assert.Contains(t, reply, "<b>SPX500</b>")
	assert.Contains(t, reply, "Risk Temperature")

	reply = s.HandleCommand(ctx, "/risk@RiskSentinelBot ndx")
	assert.Contains(t, reply, "<b>NDX</b>")

	reply = s.HandleCommand(ctx, "/summary")
	assert.Contains(t, reply, "Risk summary")
	assert.Contains(t, reply, "<b>SPX500</b>")
	assert.Contains(t, reply, "<b>NDX</b>")

	calls := mock.Calls.Load()
	assert.Contains(t, s.HandleCommand(ctx, "/refresh spx500"), "cleared")
	s.HandleCommand(ctx, "/risk SPX500")
	assert.Equal(t, calls+1, mock.Calls.Load(), "refresh forces a refetch")
	assert.Equal(t, "Usage: /refresh SYMBOL", s.HandleCommand(ctx, "/refresh"))

	reply = s.HandleCommand(ctx, "/history")
	assert.Contains(t, reply, "recent panels")

	assert.Contains(t, s.HandleCommand(ctx, "/status"), "SPX500: not evaluated yet")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "Commands:")
	assert.Contains(t, s.HandleCommand(ctx, "  "), "Commands:")
}

func TestHandleCommand_Insufficient(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{DailyData: shortBars(120)}, "NEW")
	reply := s.HandleCommand(context.Background(), "/risk")
	assert.Contains(t, reply, "only 120 sessions")
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{Price: 100}, "SPX500")
	require.NoError(t, s.RegisterAll("0 30 22 * * 1-5", "0 0 8 * * 1"))
	assert.Len(t, s.Cron.Entries(), 2)
	assert.Error(t, s.RegisterAll("not a cron", "0 0 8 * * 1"))
}

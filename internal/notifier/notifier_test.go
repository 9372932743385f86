package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskSentinel/internal/model"
	"RiskSentinel/internal/recorder"
)

func samplePanel() *model.Panel {
	pct := 87.0
	temp := 71.0
	return &model.Panel{
		Symbol:    "SPX500",
		AsOf:      time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		LastClose: 5283.4,
		Sessions:  1300,
		Severity:  model.SeverityHighRisk,
		Entries: []model.PanelEntry{
			{Name: model.NameTemperature, Result: model.IndicatorResult{Value: "71 · Elevated", Level: model.LevelElevated, Metric: &temp}},
			{Name: model.NameVolatility, Result: model.IndicatorResult{
				Value: "24.1%", Context: "20-day realized", Level: model.LevelHigh, Percentile: &pct,
				Explanation: "Volatility is in the top <15%> of its history.",
			}},
			{Name: model.NameTrendBreak, Result: model.IndicatorResult{Value: "Death Cross", Level: model.LevelHigh}},
		},
	}
}

func TestBadgeAndBannerMapsAreExhaustive(t *testing.T) {
	for _, l := range []model.Level{model.LevelLow, model.LevelElevated, model.LevelHigh} {
		assert.Contains(t, levelBadges, l)
	}
	for _, s := range []model.Severity{model.SeverityNormal, model.SeverityElevated, model.SeverityHighRisk} {
		assert.Contains(t, severityBanners, s)
	}
	for _, name := range model.PanelOrder {
		assert.Contains(t, displayNames, name)
	}
	assert.Equal(t, "⚪", LevelBadge(model.Level(9)))
	assert.Equal(t, "🚨 HIGH RISK", SeverityBanner(model.SeverityHighRisk))
}

func TestFormatPanelReport(t *testing.T) {
	msg := FormatPanelReport(samplePanel())
	assert.Contains(t, msg, "🚨 HIGH RISK | <b>SPX500</b>")
	assert.Contains(t, msg, "2024-06-03 · close 5,283.4 · 1,300 sessions")
	assert.Contains(t, msg, "2 high · 1 elevated of 3 indicators")
	assert.Contains(t, msg, "🔴 <b>Volatility</b>: 24.1% (87th pctl)")
	assert.Contains(t, msg, "<i>20-day realized</i>")
	assert.Contains(t, msg, "top &lt;15%&gt; of", "free text is HTML-escaped")
	assert.Contains(t, msg, "Not enough history for: Trend Stretch, Euphoria Meter")
}

func TestFormatSummaryAndInsufficient(t *testing.T) {
	at := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	ndx := &model.Panel{Symbol: "NDX", Severity: model.SeverityNormal}
	msg := FormatSummary([]*model.Panel{samplePanel(), ndx}, at)
	assert.Contains(t, msg, "2024-06-10")
	assert.Contains(t, msg, "🚨 HIGH RISK <b>SPX500</b> · 71 · Elevated · 2 high / 1 elevated")
	assert.Contains(t, msg, "✅ NORMAL <b>NDX</b> · n/a · 0 high / 0 elevated")

	assert.Contains(t, FormatSummary(nil, at), "No panels available.")
	assert.Equal(t, "⏳ <b>QQQ</b>: only 150 sessions of history, at least 200 are needed for a risk panel.",
		FormatInsufficient("QQQ", 150))
	assert.Equal(t, "❌ <b>QQQ</b>: a &amp; b", FormatError("QQQ", errors.New("a & b")))
}

func TestFormatHistory(t *testing.T) {
	assert.Contains(t, FormatHistory("SPX500", nil), "No stored panels")
	msg := FormatHistory("SPX500", []recorder.SnapshotRow{
		{AsOf: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Severity: model.SeverityElevated, Temperature: 58.6, LastClose: 5283.4},
		{AsOf: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), Severity: model.SeverityNormal, Temperature: -1, LastClose: 5277},
	})
	assert.Contains(t, msg, "2024-06-03 · ⚠️ ELEVATED · temp 59 · close 5,283.4")
	assert.Contains(t, msg, "2024-05-31 · ✅ NORMAL · temp n/a · close 5,277")
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]any
	var path string
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])

	status = http.StatusBadRequest
	err := n.SendWithRetry(context.Background(), "x", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestDispatch(t *testing.T) {
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		sent = append(sent, body["text"].(string))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL

	var updates []telegramUpdate
	require.NoError(t, json.Unmarshal([]byte(`[
		{"update_id": 7, "message": {"text": " /risk ", "chat": {"id": 42}}},
		{"update_id": 8, "message": {"text": "/risk", "chat": {"id": 99}}},
		{"update_id": 9}
	]`), &updates))

	var handled []string
	offset := n.dispatch(context.Background(), updates, 0, func(_ context.Context, cmd string) string {
		handled = append(handled, cmd)
		return "reply to " + cmd
	})
	assert.Equal(t, 10, offset)
	assert.Equal(t, []string{"/risk"}, handled)
	assert.Equal(t, []string{"reply to /risk"}, sent)
}

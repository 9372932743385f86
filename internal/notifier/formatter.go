package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"RiskSentinel/internal/model"
	"RiskSentinel/internal/recorder"
	"RiskSentinel/internal/risk"
)

var levelBadges = map[model.Level]string{
	model.LevelLow:      "🟢",
	model.LevelElevated: "🟡",
	model.LevelHigh:     "🔴",
}

var severityBanners = map[model.Severity]string{
	model.SeverityNormal:   "✅ NORMAL",
	model.SeverityElevated: "⚠️ ELEVATED",
	model.SeverityHighRisk: "🚨 HIGH RISK",
}

var displayNames = map[string]string{
	model.NameTemperature:  "Risk Temperature",
	model.NameTrend:        "Trend Stretch",
	model.NameTrendBreak:   "Trend Break",
	model.NameVolatility:   "Volatility",
	model.NameEuphoria:     "Euphoria Meter",
	model.NameCrash:        "Crash Days",
	model.NameDrawdown:     "Drawdown",
	model.NameCorrection:   "Correction Clock",
	model.NameGap:          "Gap Risk",
	model.NameDistribution: "Distribution Days",
}

// LevelBadge returns the colored marker for an indicator level.
func LevelBadge(l model.Level) string {
	if b, ok := levelBadges[l]; ok {
		return b
	}
	return "⚪"
}

// SeverityBanner returns the panel headline for a severity.
func SeverityBanner(s model.Severity) string {
	if b, ok := severityBanners[s]; ok {
		return b
	}
	return strings.ToUpper(s.String())
}

// DisplayName returns the human label of an indicator.
func DisplayName(name string) string {
	if d, ok := displayNames[name]; ok {
		return d
	}
	return name
}

// FormatPanelReport renders a full panel as a Telegram HTML message.
func FormatPanelReport(p *model.Panel) string {
	var b strings.Builder
	elevated, high := p.CountLevels()

	b.WriteString(fmt.Sprintf("%s | <b>%s</b>\n", SeverityBanner(p.Severity), html.EscapeString(p.Symbol)))
	b.WriteString(fmt.Sprintf("%s · close %s · %s sessions\n",
		p.AsOf.Format("2006-01-02"), humanize.CommafWithDigits(p.LastClose, 2), humanize.Comma(int64(p.Sessions))))
	b.WriteString(fmt.Sprintf("%d high · %d elevated of %d indicators\n", high, elevated, len(p.Entries)))

	for _, e := range p.Entries {
		r := e.Result
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s <b>%s</b>: %s", LevelBadge(r.Level), DisplayName(e.Name), html.EscapeString(r.Value)))
		if r.Percentile != nil {
			b.WriteString(fmt.Sprintf(" (%s pctl)", humanize.Ordinal(int(*r.Percentile+0.5))))
		}
		b.WriteString("\n")
		if r.Context != "" {
			b.WriteString(fmt.Sprintf("<i>%s</i>\n", html.EscapeString(r.Context)))
		}
		if r.Explanation != "" {
			b.WriteString(html.EscapeString(r.Explanation))
			b.WriteString("\n")
		}
	}

	if missing := missingIndicators(p); len(missing) > 0 {
		b.WriteString(fmt.Sprintf("\nNot enough history for: %s\n", strings.Join(missing, ", ")))
	}
	return b.String()
}

func missingIndicators(p *model.Panel) []string {
	var out []string
	for _, name := range model.PanelOrder {
		if _, ok := p.Get(name); !ok {
			out = append(out, DisplayName(name))
		}
	}
	return out
}

// FormatSummary renders one line per panel.
func FormatSummary(panels []*model.Panel, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>Risk summary</b> | %s\n\n", at.Format("2006-01-02")))
	if len(panels) == 0 {
		b.WriteString("No panels available.")
		return b.String()
	}
	for _, p := range panels {
		elevated, high := p.CountLevels()
		temp := "n/a"
		if r, ok := p.Get(model.NameTemperature); ok {
			temp = html.EscapeString(r.Value)
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> · %s · %d high / %d elevated\n",
			SeverityBanner(p.Severity), html.EscapeString(p.Symbol), temp, high, elevated))
	}
	return b.String()
}

// FormatInsufficient explains why no panel could be built for symbol.
func FormatInsufficient(symbol string, sessions int) string {
	return fmt.Sprintf("⏳ <b>%s</b>: only %d sessions of history, at least %d are needed for a risk panel.",
		html.EscapeString(symbol), sessions, risk.MinPanelSessions)
}

// FormatHistory renders recently stored panels for symbol.
func FormatHistory(symbol string, rows []recorder.SnapshotRow) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No stored panels for <b>%s</b>.", html.EscapeString(symbol))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s</b> recent panels\n\n", html.EscapeString(symbol)))
	for _, r := range rows {
		temp := "n/a"
		if r.Temperature >= 0 {
			temp = fmt.Sprintf("%.0f", r.Temperature)
		}
		b.WriteString(fmt.Sprintf("%s · %s · temp %s · close %s\n",
			r.AsOf.Format("2006-01-02"), SeverityBanner(r.Severity), temp, humanize.CommafWithDigits(r.LastClose, 2)))
	}
	return b.String()
}

// FormatError renders a failed evaluation.
func FormatError(symbol string, err error) string {
	return fmt.Sprintf("❌ <b>%s</b>: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"RiskSentinel/internal/alertstate"
	"RiskSentinel/internal/metrics"
	"RiskSentinel/internal/model"
	"RiskSentinel/internal/notifier"
	"RiskSentinel/internal/recorder"
	"RiskSentinel/internal/risk"
)

// SeriesSource supplies validated daily history.
type SeriesSource interface {
	Collect(ctx context.Context, symbol string) (*model.PriceSeries, error)
	Invalidate(ctx context.Context, symbol string) error
}

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// InsufficientHistoryError reports a series too short for any panel.
type InsufficientHistoryError struct {
	Symbol   string
	Sessions int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s: %d sessions, need %d", e.Symbol, e.Sessions, risk.MinPanelSessions)
}

// Scheduler manages all cron tasks and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector SeriesSource
	Alerts    *alertstate.Manager
	Notifier  Sender
	Recorder  recorder.Recorder
	Symbols   []string
	Ctx       context.Context
	Now       func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, symbols []string, col SeriesSource, alerts *alertstate.Manager, tn Sender, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Alerts:    alerts,
		Notifier:  tn,
		Recorder:  rec,
		Symbols:   symbols,
		Ctx:       ctx,
		Now:       time.Now,
	}
}

// RegisterAll registers the daily evaluation and the weekly summary.
func (s *Scheduler) RegisterAll(dailyCron, weeklyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(weeklyCron, s.weeklyTask); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Strs("symbols", s.Symbols).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunDailyNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

// Evaluate collects history for symbol, builds its panel, exports metrics and
// records the snapshot.
func (s *Scheduler) Evaluate(ctx context.Context, symbol string) (*model.Panel, error) {
	return s.evaluate(ctx, recorder.NewRunID(), symbol)
}

func (s *Scheduler) evaluate(ctx context.Context, runID, symbol string) (*model.Panel, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	series, err := s.Collector.Collect(ctx, symbol)
	if err != nil {
		metrics.ObserveFetchError(symbol)
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}

	panel, ok := risk.BuildPanel(series)
	if !ok {
		return nil, &InsufficientHistoryError{Symbol: symbol, Sessions: series.Len()}
	}
	metrics.ObservePanel(panel)

	if err := s.Recorder.RecordPanel(&recorder.PanelSnapshot{
		RunID:      runID,
		RecordedAt: s.Now(),
		Panel:      panel,
	}); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("record panel")
	}

	log.Info().
		Str("run_id", runID).
		Str("symbol", symbol).
		Stringer("severity", panel.Severity).
		Int("entries", len(panel.Entries)).
		Msg("panel evaluated")
	return panel, nil
}

func (s *Scheduler) dailyTask() {
	runID := recorder.NewRunID()
	log.Info().Str("run_id", runID).Msg("running daily evaluation")
	for _, symbol := range s.Symbols {
		panel, err := s.evaluate(s.Ctx, runID, symbol)
		if err != nil {
			var short *InsufficientHistoryError
			if errors.As(err, &short) {
				log.Warn().Str("symbol", symbol).Int("sessions", short.Sessions).Msg("not enough history for a panel")
				continue
			}
			log.Error().Err(err).Str("symbol", symbol).Msg("daily evaluation failed")
			s.trySend(notifier.FormatError(symbol, err))
			continue
		}
		if s.Alerts.Observe(panel.Symbol, panel.Severity, s.Now()) {
			s.trySend(notifier.FormatPanelReport(panel))
		}
	}
}

func (s *Scheduler) weeklyTask() {
	log.Info().Msg("running weekly summary")
	s.trySend(s.summary(s.Ctx))
}

// summary evaluates every configured symbol and renders one combined message.
func (s *Scheduler) summary(ctx context.Context) string {
	runID := recorder.NewRunID()
	var panels []*model.Panel
	var failures []string
	for _, symbol := range s.Symbols {
		panel, err := s.evaluate(ctx, runID, symbol)
		if err != nil {
			var short *InsufficientHistoryError
			if errors.As(err, &short) {
				failures = append(failures, notifier.FormatInsufficient(short.Symbol, short.Sessions))
			} else {
				failures = append(failures, notifier.FormatError(symbol, err))
			}
			continue
		}
		panels = append(panels, panel)
	}
	msg := notifier.FormatSummary(panels, s.Now())
	if len(failures) > 0 {
		msg += "\n" + strings.Join(failures, "\n")
	}
	return msg
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText()
	}
	name := strings.ToLower(fields[0])
	if i := strings.Index(name, "@"); i > 0 {
		name = name[:i]
	}
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch name {
	case "/risk":
		symbol := s.symbolOrDefault(arg)
		if symbol == "" {
			return helpText()
		}
		return s.panelReply(ctx, symbol)
	case "/summary":
		return s.summary(ctx)
	case "/refresh":
		if arg == "" {
			return "Usage: /refresh SYMBOL"
		}
		if err := s.Collector.Invalidate(ctx, arg); err != nil {
			return notifier.FormatError(arg, err)
		}
		return fmt.Sprintf("♻️ Cached history for <b>%s</b> cleared.", arg)
	case "/history":
		symbol := s.symbolOrDefault(arg)
		rows, err := s.Recorder.RecentSnapshots(symbol, 10)
		if err != nil {
			return notifier.FormatError(symbol, err)
		}
		return notifier.FormatHistory(symbol, rows)
	case "/status":
		return s.statusReply()
	default:
		return helpText()
	}
}

func (s *Scheduler) panelReply(ctx context.Context, symbol string) string {
	panel, err := s.Evaluate(ctx, symbol)
	if err != nil {
		var short *InsufficientHistoryError
		if errors.As(err, &short) {
			return notifier.FormatInsufficient(short.Symbol, short.Sessions)
		}
		return notifier.FormatError(symbol, err)
	}
	return notifier.FormatPanelReport(panel)
}

func (s *Scheduler) statusReply() string {
	var b strings.Builder
	b.WriteString("📌 <b>Alert state</b>\n\n")
	for _, symbol := range s.Symbols {
		st, ok := s.Alerts.Get(symbol)
		if !ok {
			b.WriteString(fmt.Sprintf("%s: not evaluated yet\n", symbol))
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s since %s", symbol, notifier.SeverityBanner(st.Severity), st.Since.Format("2006-01-02")))
		if st.HighRiskDays > 0 {
			b.WriteString(fmt.Sprintf(" · %d high-risk days", st.HighRiskDays))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Scheduler) symbolOrDefault(arg string) string {
	if arg != "" {
		return arg
	}
	if len(s.Symbols) > 0 {
		return s.Symbols[0]
	}
	return ""
}

func helpText() string {
	return "Commands:\n" +
		"• /risk [SYMBOL] full risk panel\n" +
		"• /summary one line per watched symbol\n" +
		"• /history [SYMBOL] recent stored panels\n" +
		"• /status current alert state\n" +
		"• /refresh SYMBOL drop cached history"
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

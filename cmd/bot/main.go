package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"RiskSentinel/internal/alertstate"
	"RiskSentinel/internal/collector"
	"RiskSentinel/internal/config"
	"RiskSentinel/internal/logging"
	"RiskSentinel/internal/metrics"
	"RiskSentinel/internal/notifier"
	"RiskSentinel/internal/recorder"
	"RiskSentinel/internal/scheduler"
)

func main() {
	pretty := os.Getenv("LOG_PRETTY") == "true"
	logging.NewLogger(os.Getenv("LOG_LEVEL"), pretty)
	log.Info().Msg("RiskSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	logging.NewLogger(cfg.LogLevel, pretty)

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "vstrader":
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.RPS)
	}
	log.Info().Str("source", fetcher.Name()).Strs("symbols", cfg.Symbols).Msg("data source ready")

	// Init series cache
	var cache collector.Cache
	if cfg.Cache.Backend == "redis" {
		rc, err := collector.NewRedisCache(collector.RedisConfig{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
			TTL:  cfg.Cache.TTL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis cache unavailable, using memory cache")
			cache = collector.NewMemoryCache(cfg.Cache.TTL, nil)
		} else {
			cache = rc
			defer rc.Close()
		}
	} else {
		cache = collector.NewMemoryCache(cfg.Cache.TTL, nil)
	}
	col := collector.NewCollector(fetcher, cache, cfg.DataSource.HistoryDays)

	// Init alert state
	alerts, err := alertstate.NewManager(cfg.StateFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.StateFile).Msg("init alert state")
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Metrics endpoint
	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, cfg.Symbols, col, alerts, tn, rec)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.WeeklyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing daily evaluation now")
		go sched.RunDailyNow()
	}

	log.Info().Msg("RiskSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	log.Info().Msg("RiskSentinel stopped")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"QuoteDesk/internal/bot"
	"QuoteDesk/internal/collector"
	"QuoteDesk/internal/config"
	"QuoteDesk/internal/facade"
	"QuoteDesk/internal/notifier"
	"QuoteDesk/internal/picker"
	"QuoteDesk/internal/recorder"
	"QuoteDesk/internal/scheduler"
)

func main() {
	boot := zap.Must(zap.NewProduction())
	zap.ReplaceGlobals(boot)

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Sugar().Fatalf("load config: %v", err)
	}
	_ = boot.Sync()

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	log := logger.Sugar()
	log.Info("QuoteDesk starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.DataSource.YahooURL, cfg.Proxy)
	}
	log.Infof("data source: %s", fetcher.Name())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init facade and result stream
	quotes := facade.New(ctx, fetcher, rec, facade.Options{CacheTTL: cfg.Cache.ResultTTL})
	defer quotes.Close()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.APIURL, cfg.Proxy)

	stream, unsubscribe := quotes.Subscribe(64)
	defer unsubscribe()
	go bot.Forward(ctx, stream, tn, cfg.Telegram.ChatID)

	// Init chat sessions; forms read the clock in the zone dates are parsed in
	loc := cfg.Location()
	clock := picker.ZonedClock(time.Now, loc)
	sessions := picker.NewSessions(func(owner string) picker.Facade {
		return quotes.For(owner)
	}, cfg.Cache.SessionTTL, clock)
	handler := bot.NewHandler(sessions, rec, loc)

	// Init scheduler
	if len(cfg.Watchlist.Symbols) > 0 {
		sched := scheduler.NewScheduler(quotes.For(scheduler.WatchlistOwner), cfg.Watchlist.Symbols, cfg.WatchlistSelection())
		sched.Now = clock
		if err := sched.RegisterAll(cfg.Watchlist.Cron); err != nil {
			log.Fatalf("register cron tasks: %v", err)
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info("RUN_ON_START enabled, refreshing watchlist now")
			go sched.RunWatchlistNow()
		}
	}

	// Start Telegram polling
	go tn.StartPolling(ctx, handler.HandleCommand)
	log.Info("telegram polling started")

	log.Info("QuoteDesk is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()
	log.Info("QuoteDesk stopped")
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.Must(zap.NewProduction())
	}
	return logger
}

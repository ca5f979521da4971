package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DrawdownMonitor/internal/config"
	"DrawdownMonitor/internal/engine"
	"DrawdownMonitor/internal/history"
	"DrawdownMonitor/internal/notifier"
	"DrawdownMonitor/internal/recorder"
	"DrawdownMonitor/internal/render"
	"DrawdownMonitor/internal/resolver"
	"DrawdownMonitor/internal/scheduler"
	"DrawdownMonitor/internal/source"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] DrawdownMonitor starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	sortCol, err := render.ParseColumn(cfg.Sort.Column)
	if err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init data source
	var src source.Source
	if cfg.DataSource.BaseURL != "" {
		src = source.NewRestSource(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		src = source.NewYahooSource(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", src.Name())

	// Init metrics pipeline
	res := resolver.New(src)
	hist := history.New(src, time.Duration(cfg.Metrics.HistoryTTLSeconds)*time.Second)
	eng := engine.New(res, hist, cfg.Metrics.RoundDigits)
	eng.Progress = func(completed, total int) {
		log.Printf("[INFO] batch progress: %d/%d", completed, total)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram notifier (disabled when no token configured)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, eng, rec, tn, scheduler.Options{
		TickersFile: cfg.Tickers.File,
		MaxWorkers:  cfg.Metrics.MaxWorkers,
		RoundDigits: cfg.Metrics.RoundDigits,
		SortColumn:  sortCol,
		SortAsc:     cfg.Sort.Ascending,
	})
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing batch now")
		go sched.RunNow()
	}

	log.Println("[INFO] DrawdownMonitor is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] DrawdownMonitor stopped")
}

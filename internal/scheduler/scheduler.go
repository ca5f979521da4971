package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"DrawdownMonitor/internal/engine"
	"DrawdownMonitor/internal/model"
	"DrawdownMonitor/internal/notifier"
	"DrawdownMonitor/internal/recorder"
	"DrawdownMonitor/internal/render"
	"DrawdownMonitor/internal/tickers"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic metric batches and serves Telegram commands.
type Scheduler struct {
	Cron        *cron.Cron
	Engine      *engine.Engine
	Recorder    recorder.Recorder
	Notifier    *notifier.TelegramNotifier
	TickersFile string
	MaxWorkers  int
	RoundDigits int
	SortColumn  render.Column
	SortAsc     bool
	Ctx         context.Context

	mu      sync.Mutex
	running bool
	last    []model.MetricRecord
}

// Options carries the batch parameters the scheduler needs from config.
type Options struct {
	TickersFile string
	MaxWorkers  int
	RoundDigits int
	SortColumn  render.Column
	SortAsc     bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng *engine.Engine, rec recorder.Recorder, tn *notifier.TelegramNotifier, opts Options) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Engine:      eng,
		Recorder:    rec,
		Notifier:    tn,
		TickersFile: opts.TickersFile,
		MaxWorkers:  opts.MaxWorkers,
		RoundDigits: opts.RoundDigits,
		SortColumn:  opts.SortColumn,
		SortAsc:     opts.SortAsc,
		Ctx:         ctx,
	}
}

// Register registers the periodic refresh task.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a refresh immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

// begin marks a batch as running; a batch already in flight is not stacked.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) end(records []model.MetricRecord) {
	s.mu.Lock()
	s.running = false
	if records != nil {
		s.last = records
	}
	s.mu.Unlock()
}

func (s *Scheduler) refreshTask() {
	if !s.begin() {
		log.Println("[WARN] previous batch still running, skipping refresh")
		return
	}

	var records []model.MetricRecord
	defer func() { s.end(records) }()

	list, err := tickers.ReadFromFile(s.TickersFile)
	if err != nil {
		log.Printf("[ERROR] read tickers: %v", err)
		return
	}
	if len(list) == 0 {
		log.Printf("[WARN] no tickers in %s", s.TickersFile)
		return
	}

	log.Printf("[INFO] running batch: %d tickers, %d workers", len(list), s.MaxWorkers)
	start := time.Now()
	records = s.Engine.ComputeAll(list, s.MaxWorkers)
	log.Printf("[INFO] batch complete in %v", time.Since(start).Round(time.Millisecond))

	render.Sort(records, s.SortColumn, s.SortAsc)
	fmt.Println(render.Table(records, s.RoundDigits))

	if s.Notifier.Enabled() {
		s.trySend(notifier.FormatBatchReport(records, s.RoundDigits))
	}
	if err := s.Recorder.RecordBatch(records); err != nil {
		log.Printf("[ERROR] record batch: %v", err)
	}
}

// lastRecords returns a copy of the most recent batch result.
func (s *Scheduler) lastRecords() []model.MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MetricRecord, len(s.last))
	copy(out, s.last)
	return out
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/refresh":
		go s.refreshTask()
		return "⏳ Refreshing..."
	case "/table":
		records := s.lastRecords()
		if len(records) == 0 {
			return "No batch has completed yet."
		}
		return notifier.FormatTable(records, s.RoundDigits)
	case "/top":
		records := s.lastRecords()
		if len(records) == 0 {
			return "No batch has completed yet."
		}
		return "📊 <b>Deepest drawdowns:</b>\n" + notifier.FormatTopDrawdowns(records, 10, s.RoundDigits)
	default:
		return "Commands:\n• /refresh — run a batch now\n• /table — show the latest table\n• /top — deepest drawdowns"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

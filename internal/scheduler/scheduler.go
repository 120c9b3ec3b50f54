package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"rsvp-harvester-go/internal/config"
	"rsvp-harvester-go/internal/extract"
	"rsvp-harvester-go/internal/fetcher"
	"rsvp-harvester-go/internal/labeler"
	"rsvp-harvester-go/internal/metrics"
	"rsvp-harvester-go/internal/models"
	"rsvp-harvester-go/internal/notifier"
	"rsvp-harvester-go/internal/store"
)

// RunRecorder is the operational ledger the scheduler writes to. Satisfied
// by ledger.Ledger.
type RunRecorder interface {
	IsProcessed(messageID string) (bool, error)
	MarkProcessed(messageID string) error
	LogParse(messageID, status, guestName, errorMsg string) error
	LogRun(run *models.RunLog) error
}

// Scheduler runs the harvest cycle on a fixed interval. One cycle is
// single-threaded and batch-oriented: fetch a capped set of messages, then
// parse and maybe append each one in turn. Non-overlap of cycles is the
// cron schedule's job; the store-level dedup keeps an accidental overlap
// harmless.
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.SchedulerConfig
	source    fetcher.MessageSource
	pipeline  *extract.Pipeline
	appender  *store.DeduplicatingAppender
	labels    labeler.LabelSink
	notifier  notifier.NotificationSink
	ledger    RunRecorder
	metrics   *metrics.Metrics
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, source fetcher.MessageSource, pipeline *extract.Pipeline,
	appender *store.DeduplicatingAppender, labels labeler.LabelSink, n notifier.NotificationSink,
	l RunRecorder, m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		config:   cfg,
		source:   source,
		pipeline: pipeline,
		appender: appender,
		labels:   labels,
		notifier: n,
		ledger:   l,
		metrics:  m,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	schedule := fmt.Sprintf("0 */%d * * * *", s.config.IntervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, s.runHarvest)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %d minutes", s.config.IntervalMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.cancel()

	ctx := s.cron.Stop()

	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.cron.Remove(s.entryID)
	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RunOnce runs the harvest cycle once (for manual triggering)
func (s *Scheduler) RunOnce() error {
	logrus.Info("Running harvest cycle once")
	s.runHarvest()
	return nil
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Next
}

// GetLastRun returns the time of the last run
func (s *Scheduler) GetLastRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Prev
}

// Wait waits for in-flight cycles to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"rsvp-harvester-go/internal/config"
	"rsvp-harvester-go/internal/extract"
	"rsvp-harvester-go/internal/labeler"
	"rsvp-harvester-go/internal/metrics"
	"rsvp-harvester-go/internal/models"
	"rsvp-harvester-go/internal/notifier"
	"rsvp-harvester-go/internal/store"
)

// stubSource returns a fixed message set on every fetch
type stubSource struct {
	emails []models.EmailMessage
	err    error
}

func (s *stubSource) Fetch(ctx context.Context) ([]models.EmailMessage, error) {
	return s.emails, s.err
}

func (s *stubSource) Close() error { return nil }

// memoryRecorder is an in-memory RunRecorder
type memoryRecorder struct {
	mu        sync.Mutex
	processed map[string]bool
	parses    []models.ParseLog
	runs      []models.RunLog
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{processed: make(map[string]bool)}
}

func (r *memoryRecorder) IsProcessed(messageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed[messageID], nil
}

func (r *memoryRecorder) MarkProcessed(messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed[messageID] = true
	return nil
}

func (r *memoryRecorder) LogParse(messageID, status, guestName, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parses = append(r.parses, models.ParseLog{MessageID: messageID, Status: status, GuestName: guestName, ErrorMsg: errorMsg})
	return nil
}

func (r *memoryRecorder) LogRun(run *models.RunLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	return nil
}

func testParserConfig() *config.ParserConfig {
	return &config.ParserConfig{
		NameFields:        []string{"name", "full name", "guest name"},
		EmailFields:       []string{"email", "e-mail"},
		CelebratingFields: []string{"celebrating", "honoree"},
		NotesFields:       []string{"notes"},
		Roster:            []string{"Ada Okafor", "Bola Ahmed"},
		FormMarkers:       []string{"New submission from"},
		NotesPlaceholder:  "Extracted from email body",
	}
}

func newTestScheduler(source *stubSource, rowStore store.RowStore, recorder RunRecorder, pipeline *extract.Pipeline) *Scheduler {
	cfg := &config.SchedulerConfig{IntervalMinutes: 60, MaxMessagesPerRun: 50}
	appender := store.NewDeduplicatingAppender(rowStore, store.ColName, store.ColEmail)
	m := metrics.NewMetricsWith(prometheus.NewRegistry())
	return NewScheduler(cfg, source, pipeline, appender, labeler.NoopLabeler{}, notifier.NoopNotifier{}, recorder, m)
}

func TestSchedulerRestart(t *testing.T) {
	sched := newTestScheduler(&stubSource{}, store.NewMemoryStore(), newMemoryRecorder(), extract.NewPipeline(testParserConfig()))

	if err := sched.Start(); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if !sched.IsRunning() {
		t.Fatalf("scheduler should be running after Start")
	}
	if err := sched.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if sched.IsRunning() {
		t.Fatalf("scheduler should not be running after Stop")
	}
	if err := sched.Start(); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if !sched.IsRunning() {
		t.Fatalf("scheduler should be running after second Start")
	}
	// context should be active again after restart
	if sched.ctx == nil || sched.ctx.Err() != nil {
		t.Fatalf("scheduler context should be active after restart")
	}
	sched.Stop()
}

func TestHarvestCycle(t *testing.T) {
	source := &stubSource{emails: []models.EmailMessage{
		{ID: "m1", Body: "Name: Jane Okoro\nEmail: jane@x.com", From: "jane@x.com"},
		{ID: "m2", Body: "Hi, I'm Femi Bello and I'll celebrate Ada Okafor.", From: "Femi Bello <femi@x.com>"},
		{ID: "m3", Body: "thanks, counting down already!", From: "mystery@x.com"},
	}}
	rowStore := store.NewMemoryStore()
	recorder := newMemoryRecorder()

	sched := newTestScheduler(source, rowStore, recorder, extract.NewPipeline(testParserConfig()))
	sched.RunOnce()

	assert.Equal(t, 2, rowStore.RowCount())

	assert.Len(t, recorder.runs, 1)
	run := recorder.runs[0]
	assert.Equal(t, 3, run.Fetched)
	assert.Equal(t, 2, run.Parsed)
	assert.Equal(t, 2, run.Appended)
	assert.Equal(t, 1, run.ParseFailures)
	assert.Equal(t, 0, run.Errors)
	assert.Equal(t, "success", run.Status)

	// Parsed messages are marked done; the unparseable one stays eligible
	// for the next run
	assert.True(t, recorder.processed["m1"])
	assert.True(t, recorder.processed["m2"])
	assert.False(t, recorder.processed["m3"])
}

func TestHarvestCycleIsReentrant(t *testing.T) {
	source := &stubSource{emails: []models.EmailMessage{
		{ID: "m1", Body: "Name: Jane Okoro\nEmail: jane@x.com", From: "jane@x.com"},
	}}
	rowStore := store.NewMemoryStore()
	recorder := newMemoryRecorder()

	sched := newTestScheduler(source, rowStore, recorder, extract.NewPipeline(testParserConfig()))
	sched.RunOnce()
	sched.RunOnce()

	// The ledger short-circuits the second pass before the store is touched
	assert.Equal(t, 1, rowStore.RowCount())
	assert.Len(t, recorder.runs, 2)
	assert.Equal(t, 0, recorder.runs[1].Parsed)
}

func TestHarvestCycleDeduplicatesWithFreshLedger(t *testing.T) {
	source := &stubSource{emails: []models.EmailMessage{
		{ID: "m1", Body: "Name: Jane Okoro\nEmail: jane@x.com", From: "jane@x.com"},
	}}
	rowStore := store.NewMemoryStore()

	// First run with one ledger, second with a fresh one, as if the
	// operational database had been wiped between runs
	sched := newTestScheduler(source, rowStore, newMemoryRecorder(), extract.NewPipeline(testParserConfig()))
	sched.RunOnce()

	recorder := newMemoryRecorder()
	sched = newTestScheduler(source, rowStore, recorder, extract.NewPipeline(testParserConfig()))
	sched.RunOnce()

	// Store-level dedup catches what the ledger no longer knows
	assert.Equal(t, 1, rowStore.RowCount())
	assert.Equal(t, 1, recorder.runs[0].Duplicates)
	assert.Equal(t, 0, recorder.runs[0].Appended)
}

func TestHarvestCycleFetchFailure(t *testing.T) {
	source := &stubSource{err: errors.New("mailbox unavailable")}
	recorder := newMemoryRecorder()

	sched := newTestScheduler(source, store.NewMemoryStore(), recorder, extract.NewPipeline(testParserConfig()))
	sched.RunOnce()

	assert.Len(t, recorder.runs, 1)
	assert.Equal(t, "failed", recorder.runs[0].Status)
	assert.Contains(t, recorder.runs[0].ErrorMsg, "mailbox unavailable")
}

// panicStrategy simulates an unexpected fault inside a parser
type panicStrategy struct{}

func (panicStrategy) Name() string { return "panic" }
func (panicStrategy) TryParse(models.EmailMessage) *models.RsvpRecord {
	panic("boom")
}

func TestHarvestCycleContainsPanics(t *testing.T) {
	source := &stubSource{emails: []models.EmailMessage{
		{ID: "m1", Body: "anything"},
		{ID: "m2", Body: "Name: Jane Okoro\nEmail: jane@x.com", From: "jane@x.com"},
	}}
	rowStore := store.NewMemoryStore()
	recorder := newMemoryRecorder()

	// Every message blows up inside the parser; the run must survive
	// and count each fault
	pipeline := extract.NewPipelineWithStrategies(panicStrategy{})
	sched := newTestScheduler(source, rowStore, recorder, pipeline)
	sched.RunOnce()

	assert.Len(t, recorder.runs, 1)
	run := recorder.runs[0]
	assert.Equal(t, 2, run.Fetched)
	assert.Equal(t, 2, run.Errors)
	assert.Equal(t, "success", run.Status)
	assert.Equal(t, 0, rowStore.RowCount())
}

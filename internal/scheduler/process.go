package scheduler

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"rsvp-harvester-go/internal/models"
	"rsvp-harvester-go/internal/store"
)

// runHarvest is one harvest cycle. Faults are contained at the smallest
// enclosing unit: a bad message never aborts its siblings, and a run-level
// fault aborts the cycle without rolling back rows already appended.
func (s *Scheduler) runHarvest() {
	s.wg.Add(1)
	defer s.wg.Done()

	logrus.Info("Starting harvest cycle")

	startTime := time.Now()
	s.metrics.Runs.Inc()

	run := models.RunLog{
		StartedAt: startTime,
		Status:    "success",
	}

	emails, err := s.source.Fetch(s.ctx)
	if err != nil {
		logrus.Errorf("Failed to fetch messages: %v", err)
		s.metrics.ProcessingErrors.Inc()

		run.Status = "failed"
		run.ErrorMsg = err.Error()
		run.FinishedAt = time.Now()
		s.recordRun(&run)

		s.notify("RSVP harvester: run failed", fmt.Sprintf("The harvest cycle could not fetch messages:\n\n%v\n", err))
		return
	}

	run.Fetched = len(emails)
	s.metrics.MessagesFetched.Add(float64(len(emails)))
	logrus.Infof("Fetched %d candidate messages", len(emails))

	for _, email := range emails {
		s.processMessage(email, &run)
	}

	duration := time.Since(startTime)
	run.FinishedAt = time.Now()
	s.metrics.RunDuration.Observe(duration.Seconds())
	s.metrics.LastRunTimestamp.SetToCurrentTime()
	s.recordRun(&run)

	logrus.Infof("Harvest cycle completed in %v: %d fetched, %d parsed, %d appended, %d duplicates, %d parse failures, %d errors",
		duration, run.Fetched, run.Parsed, run.Appended, run.Duplicates, run.ParseFailures, run.Errors)

	if run.Fetched > 0 {
		s.notify("RSVP harvester: run summary", summaryBody(&run))
	}
}

// processMessage handles a single message. Panics inside a strategy are
// recovered here and counted, so one malformed body cannot take down the
// whole cycle.
func (s *Scheduler) processMessage(email models.EmailMessage, run *models.RunLog) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Panic while processing message %s: %v", email.ID, r)
			run.Errors++
			s.metrics.ProcessingErrors.Inc()
			s.logParse(email.ID, models.ParseStatusError, "", fmt.Sprintf("panic: %v", r))
		}
	}()

	select {
	case <-s.ctx.Done():
		return
	default:
	}

	processed, err := s.ledger.IsProcessed(email.ID)
	if err != nil {
		logrus.Errorf("Failed to check processed state for %s: %v", email.ID, err)
		run.Errors++
		s.metrics.ProcessingErrors.Inc()
		return
	}

	if processed {
		logrus.Debugf("Message %s already processed, skipping", email.ID)
		return
	}

	record := s.pipeline.Extract(email)
	if record == nil {
		// Not labeled and not marked processed, so the message is retried
		// naturally on the next run if the search query still matches it
		logrus.Infof("No strategy could parse message %s", email.ID)
		run.ParseFailures++
		s.metrics.ParseFailures.Inc()
		s.logParse(email.ID, models.ParseStatusParseFailure, "", "")
		return
	}

	run.Parsed++
	s.metrics.RecordsParsed.Inc()

	status, err := s.appender.Append(s.ctx, *record)
	if err != nil {
		logrus.Errorf("Failed to append record for message %s: %v", email.ID, err)
		run.Errors++
		s.metrics.ProcessingErrors.Inc()
		s.logParse(email.ID, models.ParseStatusError, record.Name, err.Error())
		return
	}

	if status == store.StatusDuplicate {
		logrus.Infof("Record for %q from message %s already in store, skipping", record.Name, email.ID)
		run.Duplicates++
		s.metrics.DuplicatesSkipped.Inc()
		s.logParse(email.ID, models.ParseStatusDuplicate, record.Name, "")
	} else {
		logrus.Infof("Appended record for %q from message %s", record.Name, email.ID)
		run.Appended++
		s.metrics.RowsAppended.Inc()
		s.logParse(email.ID, models.ParseStatusParsed, record.Name, "")
	}

	// Duplicate-suppressed messages are still done from the mailbox's
	// point of view, so both outcomes get labeled and marked
	if err := s.labels.MarkProcessed(s.ctx, email.ID); err != nil {
		logrus.Warnf("Failed to label message %s: %v", email.ID, err)
	}

	if err := s.ledger.MarkProcessed(email.ID); err != nil {
		logrus.Errorf("Failed to mark message %s as processed: %v", email.ID, err)
	}
}

func (s *Scheduler) recordRun(run *models.RunLog) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.LogRun(run); err != nil {
		logrus.Errorf("Failed to record run: %v", err)
	}
}

func (s *Scheduler) logParse(messageID, status, guestName, errorMsg string) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.LogParse(messageID, status, guestName, errorMsg); err != nil {
		logrus.Errorf("Failed to record parse outcome for %s: %v", messageID, err)
	}
}

// notify sends operator mail; failures here are logged and never escalated
func (s *Scheduler) notify(subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(s.ctx, subject, body); err != nil {
		logrus.Errorf("Failed to send operator notification: %v", err)
	}
}

func summaryBody(run *models.RunLog) string {
	return fmt.Sprintf(
		"Harvest cycle finished at %s.\n\n"+
			"Fetched:        %d\n"+
			"Parsed:         %d\n"+
			"Appended:       %d\n"+
			"Duplicates:     %d\n"+
			"Parse failures: %d\n"+
			"Errors:         %d\n",
		run.FinishedAt.Format(time.RFC1123),
		run.Fetched, run.Parsed, run.Appended, run.Duplicates, run.ParseFailures, run.Errors)
}

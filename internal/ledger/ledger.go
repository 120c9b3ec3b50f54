package ledger

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"rsvp-harvester-go/internal/models"
)

// Ledger is the operational record of what each run did: which messages
// were fully handled, the per-message parse outcomes, and per-run counters
type Ledger struct {
	db *gorm.DB
}

// New creates a ledger over the given database
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// IsProcessed reports whether a message was already fully handled
func (l *Ledger) IsProcessed(messageID string) (bool, error) {
	var processed models.ProcessedEmail
	result := l.db.Where("message_id = ?", messageID).First(&processed)

	if result.Error == nil {
		return true, nil
	}

	if result.Error == gorm.ErrRecordNotFound {
		return false, nil
	}

	return false, fmt.Errorf("database error checking processed email: %w", result.Error)
}

// MarkProcessed records a message as fully handled
func (l *Ledger) MarkProcessed(messageID string) error {
	processed := models.ProcessedEmail{
		MessageID:   messageID,
		ProcessedAt: time.Now(),
	}

	if result := l.db.Create(&processed); result.Error != nil {
		return fmt.Errorf("failed to mark email as processed: %w", result.Error)
	}

	return nil
}

// LogParse records the outcome of extracting one message
func (l *Ledger) LogParse(messageID, status, guestName, errorMsg string) error {
	entry := models.ParseLog{
		MessageID: messageID,
		GuestName: guestName,
		Status:    status,
		ErrorMsg:  errorMsg,
		CreatedAt: time.Now(),
	}

	if result := l.db.Create(&entry); result.Error != nil {
		return fmt.Errorf("failed to log parse outcome: %w", result.Error)
	}

	return nil
}

// LogRun records the counters for one harvest cycle
func (l *Ledger) LogRun(run *models.RunLog) error {
	if result := l.db.Create(run); result.Error != nil {
		return fmt.Errorf("failed to log run: %w", result.Error)
	}
	return nil
}

// RecentParseLogs returns the newest parse log entries
func (l *Ledger) RecentParseLogs(limit int) ([]models.ParseLog, error) {
	var logs []models.ParseLog
	result := l.db.Order("created_at desc").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get parse logs: %w", result.Error)
	}
	return logs, nil
}

// RecentRuns returns the newest run log entries
func (l *Ledger) RecentRuns(limit int) ([]models.RunLog, error) {
	var runs []models.RunLog
	result := l.db.Order("started_at desc").Limit(limit).Find(&runs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get runs: %w", result.Error)
	}
	return runs, nil
}

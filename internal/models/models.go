package models

import (
	"time"

	"gorm.io/gorm"
)

// EmailMessage represents a raw inbound message as fetched from the mailbox
type EmailMessage struct {
	ID         string            `json:"id"`
	ThreadID   string            `json:"thread_id"`
	Subject    string            `json:"subject"`
	From       string            `json:"from"`
	Body       string            `json:"body"`
	HTMLBody   string            `json:"html_body"`
	Headers    map[string]string `json:"headers"`
	ReceivedAt time.Time         `json:"received_at"`
}

// RsvpRecord is a guest record extracted from a message. Name is the only
// required field; the appender fills in defaults for the rest at write time.
type RsvpRecord struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Celebrating string    `json:"celebrating"`
	Notes       string    `json:"notes"`
	Timestamp   time.Time `json:"timestamp"`
}

// ProcessedEmail marks a message as fully handled so overlapping runs skip it
type ProcessedEmail struct {
	ID          uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID   string         `json:"message_id" gorm:"type:varchar(255);not null;uniqueIndex"`
	ProcessedAt time.Time      `json:"processed_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for ProcessedEmail
func (ProcessedEmail) TableName() string {
	return "processed_emails"
}

// Parse log statuses
const (
	ParseStatusParsed       = "parsed"
	ParseStatusParseFailure = "parse_failure"
	ParseStatusDuplicate    = "duplicate"
	ParseStatusError        = "error"
)

// ParseLog records the outcome of extracting a single message
type ParseLog struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID string         `json:"message_id" gorm:"type:varchar(255);not null;index"`
	GuestName string         `json:"guest_name" gorm:"type:varchar(255)"`
	Status    string         `json:"status" gorm:"type:varchar(50);not null"` // parsed, parse_failure, duplicate, error
	ErrorMsg  string         `json:"error_msg" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for ParseLog
func (ParseLog) TableName() string {
	return "parse_logs"
}

// RunLog records the counters for one harvest cycle
type RunLog struct {
	ID            uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Fetched       int            `json:"fetched"`
	Parsed        int            `json:"parsed"`
	ParseFailures int            `json:"parse_failures"`
	Appended      int            `json:"appended"`
	Duplicates    int            `json:"duplicates"`
	Errors        int            `json:"errors"`
	Status        string         `json:"status" gorm:"type:varchar(50);not null"` // success, failed
	ErrorMsg      string         `json:"error_msg" gorm:"type:text"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for RunLog
func (RunLog) TableName() string {
	return "run_logs"
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

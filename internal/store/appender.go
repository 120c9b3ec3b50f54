package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rsvp-harvester-go/internal/models"
)

// AppendStatus is the outcome of one append attempt
type AppendStatus string

// Append outcomes
const (
	StatusWritten   AppendStatus = "written"
	StatusDuplicate AppendStatus = "duplicate"
)

// Field defaults applied at write time, never at extraction time
const (
	DefaultEmail       = "not provided"
	DefaultCelebrating = "not specified"
	DefaultNotes       = "none"
)

// DeduplicatingAppender writes guest records to a RowStore, suppressing
// duplicates. The match is intentionally loose: a record is a duplicate
// when its email OR its name collides with any existing row, even if the
// other field differs. Repeated runs over overlapping message sets rely on
// this to stay idempotent.
type DeduplicatingAppender struct {
	store    RowStore
	nameCol  int
	emailCol int
}

// NewDeduplicatingAppender creates an appender over the given store.
// nameCol and emailCol locate those fields in the destination table.
func NewDeduplicatingAppender(store RowStore, nameCol, emailCol int) *DeduplicatingAppender {
	return &DeduplicatingAppender{store: store, nameCol: nameCol, emailCol: emailCol}
}

// Append writes the record unless its email or name already appears in the
// store. Returns StatusDuplicate without writing when either collides.
func (a *DeduplicatingAppender) Append(ctx context.Context, record models.RsvpRecord) (AppendStatus, error) {
	if err := a.store.EnsureHeader(ctx, Header); err != nil {
		return "", fmt.Errorf("failed to ensure header row: %w", err)
	}

	duplicate, err := a.isDuplicate(ctx, record)
	if err != nil {
		return "", err
	}
	if duplicate {
		logrus.Debugf("Skipping duplicate record for %q", record.Name)
		return StatusDuplicate, nil
	}

	if err := a.store.AppendRow(ctx, buildRow(record)); err != nil {
		return "", fmt.Errorf("failed to append row: %w", err)
	}

	return StatusWritten, nil
}

func (a *DeduplicatingAppender) isDuplicate(ctx context.Context, record models.RsvpRecord) (bool, error) {
	names, err := a.store.ReadColumn(ctx, a.nameCol)
	if err != nil {
		return false, fmt.Errorf("failed to read name column: %w", err)
	}
	if containsValue(names, record.Name) {
		return true, nil
	}

	emails, err := a.store.ReadColumn(ctx, a.emailCol)
	if err != nil {
		return false, fmt.Errorf("failed to read email column: %w", err)
	}
	return containsValue(emails, record.Email), nil
}

// containsValue compares trimmed and case-folded, skipping empty cells so
// a record without an email never matches a blank cell
func containsValue(cells []string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell != "" && strings.EqualFold(cell, value) {
			return true
		}
	}
	return false
}

// buildRow applies the field defaults and serializes the record in header
// column order
func buildRow(record models.RsvpRecord) []string {
	email := record.Email
	if email == "" {
		email = DefaultEmail
	}

	celebrating := record.Celebrating
	if celebrating == "" {
		celebrating = DefaultCelebrating
	}

	notes := record.Notes
	if notes == "" {
		notes = DefaultNotes
	}

	timestamp := record.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return []string{record.Name, email, celebrating, notes, timestamp.Format(time.RFC3339)}
}

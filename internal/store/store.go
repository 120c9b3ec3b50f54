package store

import "context"

// Header is the fixed first row of the destination table
var Header = []string{"Name", "Email", "Celebrating", "Notes", "Timestamp"}

// Column indices within Header
const (
	ColName = iota
	ColEmail
	ColCelebrating
	ColNotes
	ColTimestamp
)

// RowStore is the append-only tabular destination for guest records.
// ReadColumn returns data rows only, never the header row.
type RowStore interface {
	EnsureHeader(ctx context.Context, header []string) error
	ReadColumn(ctx context.Context, col int) ([]string, error)
	AppendRow(ctx context.Context, values []string) error
}

package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory RowStore used for tests and dry runs
type MemoryStore struct {
	mu     sync.RWMutex
	header []string
	rows   [][]string
}

// NewMemoryStore creates an empty in-memory row store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// EnsureHeader sets the header row if one is not present yet
func (m *MemoryStore) EnsureHeader(ctx context.Context, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.header) == 0 {
		m.header = append([]string(nil), header...)
	}
	return nil
}

// ReadColumn returns the given column of every data row
func (m *MemoryStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]string, 0, len(m.rows))
	for _, row := range m.rows {
		if col < len(row) {
			values = append(values, row[col])
		} else {
			values = append(values, "")
		}
	}
	return values, nil
}

// AppendRow appends one data row
func (m *MemoryStore) AppendRow(ctx context.Context, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, append([]string(nil), values...))
	return nil
}

// RowCount returns the number of data rows (header excluded)
func (m *MemoryStore) RowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Rows returns a copy of all data rows
func (m *MemoryStore) Rows() [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([][]string, len(m.rows))
	for i, row := range m.rows {
		rows[i] = append([]string(nil), row...)
	}
	return rows
}

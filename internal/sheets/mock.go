package sheets

import (
	"context"
	"sync"
)

// MockReader is a mock spreadsheet reader for testing.
type MockReader struct {
	RowsFunc func(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	Calls    []RowsCall
	mu       sync.Mutex
}

// RowsCall records a single call to Rows.
type RowsCall struct {
	SpreadsheetID string
	Range         string
}

// NewMockReader creates a mock reader returning rows.
func NewMockReader(rows [][]string) *MockReader {
	return &MockReader{
		RowsFunc: func(context.Context, string, string) ([][]string, error) {
			return rows, nil
		},
	}
}

// Rows records the call and delegates to RowsFunc.
func (m *MockReader) Rows(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, RowsCall{SpreadsheetID: spreadsheetID, Range: rng})
	m.mu.Unlock()

	if m.RowsFunc == nil {
		return nil, nil
	}
	return m.RowsFunc(ctx, spreadsheetID, rng)
}

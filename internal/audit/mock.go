package audit

import (
	"context"
	"sync"

	"github.com/Veraticus/spare/internal/service"
)

// MockSink is a mock implementation of service.AuditSink for testing.
type MockSink struct {
	PersistFunc func(ctx context.Context, entry service.AuditEntry) error
	Entries     []service.AuditEntry
	mu          sync.Mutex
}

// NewMockSink creates a new mock sink that records every entry.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Persist implements service.AuditSink.
func (m *MockSink) Persist(ctx context.Context, entry service.AuditEntry) error {
	m.mu.Lock()
	m.Entries = append(m.Entries, entry)
	fn := m.PersistFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, entry)
	}
	return nil
}

// Count returns the number of persisted entries.
func (m *MockSink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}

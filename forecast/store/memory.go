// Package store provides NotificationLog implementations.
package store

import (
	"context"
	"sync"

	"github.com/accountrms/forecasting/forecast"
)

// =============================================================================
// MEMORY LOG - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records []forecast.NotificationRecord

	// FailWith, when set, fails every Append and List.
	FailWith error
}

func NewMemory() *Memory {
	return &Memory{}
}

// Append adds a single record. Append-only.
func (m *Memory) Append(_ context.Context, rec forecast.NotificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return &forecast.IOFailure{Op: "append", Path: "memory", Err: m.FailWith}
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) List(_ context.Context) ([]forecast.NotificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailWith != nil {
		return nil, &forecast.IOFailure{Op: "list", Path: "memory", Err: m.FailWith}
	}
	result := make([]forecast.NotificationRecord, len(m.records))
	copy(result, m.records)
	return result, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

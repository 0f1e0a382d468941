package mocks

import (
	"context"
	"sync"

	"clickstream-backend/internal/domain/load"
	appErrors "clickstream-backend/pkg/errors"
)

// Write is one recorded ledger status write.
type Write struct {
	SourceURI string
	Status    load.JobStatus
}

// MemoryLedger is an in-memory job ledger that records every write in order.
// Like the DynamoDB ledger it refuses terminal writes that do not follow
// JOB_PROCESSING or the same terminal status.
type MemoryLedger struct {
	mu sync.Mutex

	records map[string]load.JobStatus
	writes  []Write

	// For testing error scenarios
	failOn map[string]error
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		records: make(map[string]load.JobStatus),
		failOn:  make(map[string]error),
	}
}

// FailOn makes every write for sourceURI return err.
func (m *MemoryLedger) FailOn(sourceURI string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[sourceURI] = err
}

// Seed stores a status without recording a write.
func (m *MemoryLedger) Seed(sourceURI string, status load.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[sourceURI] = status
}

// Writes returns the successful writes in the order they happened.
func (m *MemoryLedger) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Write, len(m.writes))
	copy(out, m.writes)
	return out
}

// Status returns the stored status of sourceURI.
func (m *MemoryLedger) Status(sourceURI string) (load.JobStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.records[sourceURI]
	return status, ok
}

func (m *MemoryLedger) MarkStatus(ctx context.Context, sourceURI string, status load.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failOn[sourceURI]; ok {
		return err
	}
	if current := m.records[sourceURI]; !current.CanTransitionTo(status) {
		return appErrors.NewInvalidTransitionError(sourceURI, string(status), nil)
	}
	m.records[sourceURI] = status
	m.writes = append(m.writes, Write{SourceURI: sourceURI, Status: status})
	return nil
}

func (m *MemoryLedger) Get(ctx context.Context, sourceURI string) (*load.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.records[sourceURI]
	if !ok {
		return nil, nil
	}
	return &load.JobRecord{SourceURI: sourceURI, Status: status}, nil
}

package inspection

import (
	"context"
	"sync"
)

// Store persists validated inspection entries. Append-only, like the
// transaction log: corrections are new inspections, not edits.
type Store interface {
	// Record persists the entry and returns the assigned sequence.
	Record(ctx context.Context, e Entry) (int64, error)

	// ReadAll returns every entry in sequence order.
	ReadAll(ctx context.Context) ([]Entry, error)
}

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	nextSeq int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextSeq: 1}
}

func (m *MemoryStore) Record(_ context.Context, e Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.Sequence = m.nextSeq
	m.nextSeq++
	m.entries = append(m.entries, e)
	return e.Sequence, nil
}

func (m *MemoryStore) ReadAll(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Entry, len(m.entries))
	copy(result, m.entries)
	return result, nil
}

var _ Store = (*MemoryStore)(nil)

// Package store provides Log implementations.
package store

import (
	"context"
	"sync"

	"github.com/symeon158/Equipment-Inspection/ledger"
)

// =============================================================================
// MEMORY LOG - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is an append-only in-memory log. Sequence is assigned under the
// lock, so records are totally ordered even with concurrent writers.
type Memory struct {
	mu      sync.RWMutex
	records []ledger.Record
	nextSeq int64
}

func NewMemory() *Memory {
	return &Memory{nextSeq: 1}
}

// Seed loads pre-existing records, reassigning sequences in slice order.
// Test helper for "the log already contains" scenarios.
func (m *Memory) Seed(recs ...ledger.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		rec.Sequence = m.nextSeq
		m.nextSeq++
		m.records = append(m.records, rec)
	}
}

// Append adds a single record. Append-only.
func (m *Memory) Append(_ context.Context, rec ledger.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(rec), nil
}

// AppendIf adds rec only if no record for its asset has landed past token.
func (m *Memory) AppendIf(_ context.Context, rec ledger.Record, token int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].AssetKey != rec.AssetKey {
			continue
		}
		if m.records[i].Sequence > token {
			return 0, ledger.ErrConflict
		}
		break // records are sequence-ordered; first hit is the newest
	}
	return m.appendLocked(rec), nil
}

func (m *Memory) appendLocked(rec ledger.Record) int64 {
	rec.Sequence = m.nextSeq
	m.nextSeq++
	m.records = append(m.records, rec)
	return rec.Sequence
}

func (m *Memory) ReadAll(_ context.Context) ([]ledger.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Record, len(m.records))
	copy(result, m.records)
	return result, nil
}

func (m *Memory) ReadAsset(_ context.Context, assetKey string) ([]ledger.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Record
	for _, rec := range m.records {
		if rec.AssetKey == assetKey {
			result = append(result, rec)
		}
	}
	return result, nil
}

var _ ledger.ConditionalLog = (*Memory)(nil)

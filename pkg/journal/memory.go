package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStorage keeps journal records in a bounded in-memory ring.
// Intended for development and tests; records do not survive restarts.
type MemoryStorage struct {
	mu         sync.RWMutex
	records    []*Record
	maxRecords int
	logger     *slog.Logger
}

// DefaultMemoryMaxRecords bounds the in-memory ring when no limit is
// configured.
const DefaultMemoryMaxRecords = 10000

// NewMemoryStorage creates an in-memory journal store holding at most
// maxRecords records; the oldest are evicted first. maxRecords <= 0
// selects the default bound.
func NewMemoryStorage(maxRecords int) *MemoryStorage {
	if maxRecords <= 0 {
		maxRecords = DefaultMemoryMaxRecords
	}
	return &MemoryStorage{
		maxRecords: maxRecords,
		logger:     slog.Default().With("component", "journal.storage.memory"),
	}
}

// Store appends a record, evicting the oldest when the ring is full.
func (m *MemoryStorage) Store(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.records) >= m.maxRecords {
		evict := len(m.records) - m.maxRecords + 1
		m.records = m.records[evict:]
	}
	m.records = append(m.records, rec)
	return nil
}

// Query returns matching records oldest first.
func (m *MemoryStorage) Query(ctx context.Context, q *Query) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if q == nil {
		q = &Query{}
	}

	var out []*Record
	for _, rec := range m.records {
		if !matches(rec, q) {
			continue
		}
		out = append(out, rec)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of matching records.
func (m *MemoryStorage) Count(ctx context.Context, q *Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if q == nil {
		q = &Query{}
	}

	var n int64
	for _, rec := range m.records {
		if matches(rec, q) {
			n++
		}
	}
	return n, nil
}

// DeleteBefore removes records with EventTime before the cutoff.
func (m *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, rec := range m.records {
		if rec.EventTime.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return deleted, nil
}

// DeleteOldest removes the n oldest records. Records are stored in
// insertion order, which tracks event time.
func (m *MemoryStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || len(m.records) == 0 {
		return 0, nil
	}
	if n > int64(len(m.records)) {
		n = int64(len(m.records))
	}
	m.records = m.records[n:]
	return n, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryStorage) Close() error { return nil }

func matches(rec *Record, q *Query) bool {
	if q.Source != "" && rec.Source != q.Source {
		return false
	}
	if q.Before != nil && !rec.EventTime.Before(*q.Before) {
		return false
	}
	return true
}

package quota

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	day  string
	used int
}

// Memory is a process-local Limiter. Counters reset when the UTC day changes.
type Memory struct {
	mu      sync.Mutex
	limit   int
	buckets map[uint]*bucket
	now     func() time.Time
}

func NewMemory(limit int) *Memory {
	return &Memory{limit: limit, buckets: make(map[uint]*bucket), now: time.Now}
}

// bucketFor returns userID's counter for today. Callers hold mu.
func (m *Memory) bucketFor(userID uint) *bucket {
	day := dayKey(m.now())
	b, ok := m.buckets[userID]
	if !ok || b.day != day {
		b = &bucket{day: day}
		m.buckets[userID] = b
	}
	return b
}

func (m *Memory) Acquire(_ context.Context, userID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bucketFor(userID)
	if b.used >= m.limit {
		return 0, ErrExceeded
	}
	b.used++
	return m.limit - b.used, nil
}

func (m *Memory) Refund(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b := m.bucketFor(userID); b.used > 0 {
		b.used--
	}
	return nil
}

func (m *Memory) Remaining(_ context.Context, userID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limit - m.bucketFor(userID).used, nil
}

func (m *Memory) Limit() int { return m.limit }

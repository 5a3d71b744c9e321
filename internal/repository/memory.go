package repository

import (
	"context"
	"sort"
	"sync"
)

// MemoryTransformRepository keeps history for the life of the process.
type MemoryTransformRepository struct {
	mu      sync.RWMutex
	records map[string]*TransformRecord
	seq     map[string]int
	next    int
}

func NewMemoryTransformRepository() *MemoryTransformRepository {
	return &MemoryTransformRepository{
		records: make(map[string]*TransformRecord),
		seq:     make(map[string]int),
	}
}

func (m *MemoryTransformRepository) Save(ctx context.Context, rec *TransformRecord) error {
	if err := rec.validate(); err != nil {
		return err
	}
	cp := *rec
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seq[rec.ID]; !ok {
		m.seq[rec.ID] = m.next
		m.next++
	}
	m.records[rec.ID] = &cp
	return nil
}

func (m *MemoryTransformRepository) Get(ctx context.Context, id string) (*TransformRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryTransformRepository) ListBySession(ctx context.Context, sessionID string) ([]*TransformRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*TransformRecord, 0)
	for _, rec := range m.records {
		if rec.SessionID == sessionID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return m.seq[out[i].ID] < m.seq[out[j].ID]
	})
	return out, nil
}

func (m *MemoryTransformRepository) Close() error { return nil }

package consent

import (
	"context"
	"sort"
	"sync"
)

type consentKey struct {
	userID      string
	consentType string
}

// MemoryStore implements Store with an in-process map guarded by a mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[consentKey]Record
}

// NewMemoryStore creates an empty in-memory consent store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[consentKey]Record)}
}

// Upsert replaces any previous decision for the same (user, type).
func (m *MemoryStore) Upsert(ctx context.Context, rec Record) error {
	if rec.UserID == "" {
		return ErrInvalidUserID
	}
	if rec.Type == "" {
		return ErrInvalidType
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[consentKey{rec.UserID, rec.Type}] = rec
	return nil
}

// Get returns the decision for (user, type), reporting absence via the boolean.
func (m *MemoryStore) Get(ctx context.Context, userID, consentType string) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[consentKey{userID, consentType}]
	return rec, ok, nil
}

// All returns the user's decisions ordered by consent type.
func (m *MemoryStore) All(ctx context.Context, userID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for key, rec := range m.records {
		if key.userID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// DeleteByUser removes all of the user's decisions.
func (m *MemoryStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key := range m.records {
		if key.userID == userID {
			delete(m.records, key)
			n++
		}
	}
	return n, nil
}

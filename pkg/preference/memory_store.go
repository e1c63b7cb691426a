package preference

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map guarded by a mutex.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memoryDoc
}

type memoryDoc struct {
	prefs     Preferences
	updatedAt time.Time
}

// NewMemoryStore creates an empty in-memory preference store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryDoc)}
}

// Save upserts the user's document.
func (m *MemoryStore) Save(ctx context.Context, userID string, prefs Preferences, now time.Time) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[userID] = memoryDoc{prefs: prefs.Clone(), updatedAt: now}
	return nil
}

// Load returns the user's document, or nil when nothing is stored.
func (m *MemoryStore) Load(ctx context.Context, userID string) (Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[userID]
	if !ok {
		return nil, nil
	}
	return doc.prefs.Clone(), nil
}

// Delete removes the user's document, reporting whether one existed.
func (m *MemoryStore) Delete(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.docs[userID]
	delete(m.docs, userID)
	return ok, nil
}

// UpdatedAt returns when the user's document was last written. Zero time and
// false when nothing is stored.
func (m *MemoryStore) UpdatedAt(userID string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[userID]
	return doc.updatedAt, ok
}

package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map guarded by a mutex.
// The mutex gives every operation on a session id the sequential ordering
// the Store contract requires.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Insert stores a new session record.
func (m *MemoryStore) Insert(ctx context.Context, s *Session, now time.Time) error {
	if s == nil || s.ID == "" || s.UserID == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.clone()
	return nil
}

// Get retrieves a session by identifier regardless of expiry.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

// Touch re-extends the expiry iff the session exists and is unexpired at now.
func (m *MemoryStore) Touch(ctx context.Context, id string, now, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.ExpiredAt(now) {
		return false, nil
	}
	s.LastActivityAt = now
	s.ExpiresAt = expiresAt
	return true, nil
}

// MergeData merges kv into the data mapping of a live session.
func (m *MemoryStore) MergeData(ctx context.Context, id string, kv map[string]any, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.ExpiredAt(now) {
		return false, nil
	}
	if s.Data == nil {
		s.Data = make(map[string]any, len(kv))
	}
	for k, v := range kv {
		s.Data[k] = v
	}
	s.LastActivityAt = now
	return true, nil
}

// Delete removes a session. Absent ids are ignored.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// DeleteExpired removes every session past its expiry at now.
func (m *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.ExpiredAt(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// ActiveByUser returns the user's unexpired sessions, newest first.
func (m *MemoryStore) ActiveByUser(ctx context.Context, userID string, now time.Time) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Session
	for _, s := range m.sessions {
		if s.UserID == userID && !s.ExpiredAt(now) {
			out = append(out, *s.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListByUser returns all of the user's sessions including expired ones.
func (m *MemoryStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteByUser removes all of the user's sessions.
func (m *MemoryStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// CountActive returns the number of unexpired sessions at now.
func (m *MemoryStore) CountActive(ctx context.Context, now time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, s := range m.sessions {
		if !s.ExpiredAt(now) {
			n++
		}
	}
	return n, nil
}

// DeleteCreatedBefore removes sessions created before cutoff regardless of
// expiry. Used by retention.
func (m *MemoryStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// CountByUser returns the total number of sessions recorded for the user,
// expired ones included. Used by analytics.
func (m *MemoryStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, s := range m.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

// AvgDuration returns the mean of last_activity-created_at across sessions.
// An empty userID averages over all sessions. Used by analytics.
func (m *MemoryStore) AvgDuration(ctx context.Context, userID string) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total time.Duration
	var n int64
	for _, s := range m.sessions {
		if userID != "" && s.UserID != userID {
			continue
		}
		total += s.Duration()
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return total / time.Duration(n), nil
}

package activity

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage implements Storage with an in-process slice guarded by a
// mutex. Insertion ids are assigned from a monotonic counter, matching the
// auto-increment semantics of the SQL backend.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
	nextID int64
}

// NewMemoryStorage creates an empty in-memory activity log.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{nextID: 1}
}

// Insert appends one event and returns its id.
func (m *MemoryStorage) Insert(ctx context.Context, e *Event) (int64, error) {
	if e == nil || e.UserID == "" {
		return 0, ErrInvalidUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *e
	stored.ID = m.nextID
	m.nextID++
	if e.Data != nil {
		stored.Data = make(map[string]any, len(e.Data))
		for k, v := range e.Data {
			stored.Data[k] = v
		}
	}
	m.events = append(m.events, stored)
	return stored.ID, nil
}

// InsertBatch appends a batch of events. All-or-nothing holds trivially
// under the lock.
func (m *MemoryStorage) InsertBatch(ctx context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range events {
		if e.UserID == "" {
			return ErrInvalidUserID
		}
	}
	for _, e := range events {
		e.ID = m.nextID
		m.nextID++
		m.events = append(m.events, e)
	}
	return nil
}

// ListByUser returns the user's events newest first, narrowed by the filter.
func (m *MemoryStorage) ListByUser(ctx context.Context, userID string, f Filter) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Event
	for _, e := range m.events {
		if e.UserID != userID {
			continue
		}
		if !f.Type.IsZero() && e.Type != f.Type {
			continue
		}
		matched = append(matched, cloneEvent(e))
	}
	sortNewestFirst(matched)

	if f.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[f.Offset:]
	if limit := f.limit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// ListWindow returns events with start <= timestamp < end, newest first.
func (m *MemoryStorage) ListWindow(ctx context.Context, start, end time.Time) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Event
	for _, e := range m.events {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			matched = append(matched, cloneEvent(e))
		}
	}
	sortNewestFirst(matched)
	return matched, nil
}

// ListAllByUser returns every event for the user, newest first.
func (m *MemoryStorage) ListAllByUser(ctx context.Context, userID string) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Event
	for _, e := range m.events {
		if e.UserID == userID {
			matched = append(matched, cloneEvent(e))
		}
	}
	sortNewestFirst(matched)
	return matched, nil
}

// CountByUser counts the user's events, optionally restricted to one type.
func (m *MemoryStorage) CountByUser(ctx context.Context, userID string, eventType EventType) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, e := range m.events {
		if e.UserID != userID {
			continue
		}
		if !eventType.IsZero() && e.Type != eventType {
			continue
		}
		n++
	}
	return n, nil
}

// DeleteOlderThan removes events with timestamp before cutoff.
func (m *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.events[:0]
	var n int64
	for _, e := range m.events {
		if e.Timestamp.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return n, nil
}

// DeleteByUser removes all of the user's events.
func (m *MemoryStorage) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.events[:0]
	var n int64
	for _, e := range m.events {
		if e.UserID == userID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return n, nil
}

// CountsByType returns event counts grouped by type for events at or after
// since. Used by analytics.
func (m *MemoryStorage) CountsByType(ctx context.Context, since time.Time) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range m.events {
		if e.Timestamp.Before(since) {
			continue
		}
		counts[e.Type.String()]++
	}
	return counts, nil
}

// CountsByTypeForUser returns the user's event counts grouped by type.
func (m *MemoryStorage) CountsByTypeForUser(ctx context.Context, userID string) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range m.events {
		if e.UserID == userID {
			counts[e.Type.String()]++
		}
	}
	return counts, nil
}

// DistinctUsers counts users with at least one event in [start, end).
func (m *MemoryStorage) DistinctUsers(ctx context.Context, start, end time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make(map[string]struct{})
	for _, e := range m.events {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			users[e.UserID] = struct{}{}
		}
	}
	return int64(len(users)), nil
}

// DistinctUsersByType counts users with at least one event of the given
// type. Used by funnel analytics.
func (m *MemoryStorage) DistinctUsersByType(ctx context.Context, eventType EventType) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make(map[string]struct{})
	for _, e := range m.events {
		if e.Type == eventType {
			users[e.UserID] = struct{}{}
		}
	}
	return int64(len(users)), nil
}

// TopUsers returns the most active users by total event count.
func (m *MemoryStorage) TopUsers(ctx context.Context, limit int) ([]UserCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range m.events {
		counts[e.UserID]++
	}

	out := make([]UserCount, 0, len(counts))
	for uid, n := range counts {
		out = append(out, UserCount{UserID: uid, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Journey returns the user's events oldest first, optionally narrowed to a
// single session. Used by behavioral analytics.
func (m *MemoryStorage) Journey(ctx context.Context, userID, sessionID string, limit int) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Event
	for _, e := range m.events {
		if e.UserID != userID {
			continue
		}
		if sessionID != "" && e.SessionID != sessionID {
			continue
		}
		matched = append(matched, cloneEvent(e))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.Before(matched[j].Timestamp)
		}
		return matched[i].ID < matched[j].ID
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func cloneEvent(e Event) Event {
	if e.Data != nil {
		data := make(map[string]any, len(e.Data))
		for k, v := range e.Data {
			data[k] = v
		}
		e.Data = data
	}
	return e
}

func sortNewestFirst(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		return events[i].ID > events[j].ID
	})
}

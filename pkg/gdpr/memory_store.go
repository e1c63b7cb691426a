package gdpr

import (
	"context"

	"github.com/trackkit/trackkit/pkg/activity"
	"github.com/trackkit/trackkit/pkg/consent"
	"github.com/trackkit/trackkit/pkg/preference"
	"github.com/trackkit/trackkit/pkg/session"
)

// MemoryStore composes the in-memory stores of the other packages. The
// individual operations cannot fail, so erasure is trivially all-or-nothing.
type MemoryStore struct {
	sessions    *session.MemoryStore
	activities  *activity.MemoryStorage
	preferences *preference.MemoryStore
	consents    *consent.MemoryStore
}

// NewMemoryStore wires the four in-memory stores together. Panics on nil
// arguments; that is a wiring bug, not a runtime condition.
func NewMemoryStore(
	sessions *session.MemoryStore,
	activities *activity.MemoryStorage,
	preferences *preference.MemoryStore,
	consents *consent.MemoryStore,
) *MemoryStore {
	if sessions == nil || activities == nil || preferences == nil || consents == nil {
		panic("gdpr: all stores must be non-nil")
	}
	return &MemoryStore{
		sessions:    sessions,
		activities:  activities,
		preferences: preferences,
		consents:    consents,
	}
}

// ExportUser reads the user's data from all four stores.
func (m *MemoryStore) ExportUser(ctx context.Context, userID string) (UserData, error) {
	var data UserData
	var err error

	if data.Sessions, err = m.sessions.ListByUser(ctx, userID); err != nil {
		return UserData{}, err
	}
	if data.Activities, err = m.activities.ListAllByUser(ctx, userID); err != nil {
		return UserData{}, err
	}
	if data.Preferences, err = m.preferences.Load(ctx, userID); err != nil {
		return UserData{}, err
	}
	if data.Consent, err = m.consents.All(ctx, userID); err != nil {
		return UserData{}, err
	}
	return data, nil
}

// EraseUser removes the user from all four stores.
func (m *MemoryStore) EraseUser(ctx context.Context, userID string) (ErasureSummary, error) {
	var summary ErasureSummary
	var err error

	if summary.Sessions, err = m.sessions.DeleteByUser(ctx, userID); err != nil {
		return ErasureSummary{}, err
	}
	if summary.Activities, err = m.activities.DeleteByUser(ctx, userID); err != nil {
		return ErasureSummary{}, err
	}
	deleted, err := m.preferences.Delete(ctx, userID)
	if err != nil {
		return ErasureSummary{}, err
	}
	if deleted {
		summary.Preferences = 1
	}
	if summary.Consents, err = m.consents.DeleteByUser(ctx, userID); err != nil {
		return ErasureSummary{}, err
	}
	return summary, nil
}

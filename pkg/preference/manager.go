package preference

import (
	"context"
	"log/slog"
	"time"
)

// Manager exposes preference operations over a Store, filling in defaults
// for users who have never written preferences.
type Manager struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a preference manager. Panics on nil store; that is a
// wiring bug, not a runtime condition.
func NewManager(store Store, opts ...Option) *Manager {
	if store == nil {
		panic("preference: store cannot be nil")
	}

	m := &Manager{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the user's preference document, or a copy of the defaults when
// nothing is stored yet.
func (m *Manager) Get(ctx context.Context, userID string) (Preferences, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	prefs, err := m.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return Defaults(), nil
	}
	return prefs, nil
}

// Set replaces the user's preference document.
func (m *Manager) Set(ctx context.Context, userID string, prefs Preferences) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	if err := m.store.Save(ctx, userID, prefs, m.now().UTC()); err != nil {
		return err
	}
	m.log.DebugContext(ctx, "preferences updated", "user_id", userID)
	return nil
}

// UpdateKey sets one top-level key, leaving the rest of the document intact.
// For users without stored preferences the update applies on top of the
// defaults, which then become persistent.
func (m *Manager) UpdateKey(ctx context.Context, userID, key string, value any) error {
	if key == "" {
		return ErrInvalidKey
	}

	prefs, err := m.Get(ctx, userID)
	if err != nil {
		return err
	}
	prefs[key] = value
	return m.Set(ctx, userID, prefs)
}

// GetKey returns one top-level key. The boolean reports whether the key is
// present in the user's (possibly default) document.
func (m *Manager) GetKey(ctx context.Context, userID, key string) (any, bool, error) {
	if key == "" {
		return nil, false, ErrInvalidKey
	}

	prefs, err := m.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	v, ok := prefs[key]
	return v, ok, nil
}

// Reset writes the defaults over whatever the user has stored.
func (m *Manager) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	if err := m.store.Save(ctx, userID, Defaults(), m.now().UTC()); err != nil {
		return err
	}
	m.log.InfoContext(ctx, "preferences reset to defaults", "user_id", userID)
	return nil
}

// Delete removes the user's stored document. Subsequent reads see defaults
// again. Deleting an absent document is not an error.
func (m *Manager) Delete(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, ErrInvalidUserID
	}
	return m.store.Delete(ctx, userID)
}

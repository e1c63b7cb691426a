package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/trackkit/trackkit/pkg/sessionid"
)

// Manager orchestrates identifier generation and the Store to implement the
// session lifecycle. It is the only writer of session records.
type Manager struct {
	store Store
	cfg   Config
	log   *slog.Logger
	now   func() time.Time
}

// NewManager creates a session manager. Configuration is validated up front;
// a non-positive TTL is rejected with ErrInvalidTimeout before any storage
// access can happen.
func NewManager(store Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrInvalidSession
	}

	m := &Manager{
		store: store,
		cfg:   DefaultConfig(),
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Create mints a new session for the user and returns its identifier.
func (m *Manager) Create(ctx context.Context, userID, ip, userAgent string) (string, error) {
	if userID == "" {
		return "", ErrInvalidUserID
	}

	id, err := sessionid.New()
	if err != nil {
		return "", err
	}

	now := m.now()
	s := &Session{
		ID:             id,
		UserID:         userID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.cfg.TTL),
		LastActivityAt: now,
		Data:           make(map[string]any),
		IP:             ip,
		UserAgent:      userAgent,
	}

	if err := m.store.Insert(ctx, s, now); err != nil {
		return "", errors.Join(ErrStorageUnavailable, err)
	}

	m.log.InfoContext(ctx, "session created", "user_id", userID)
	return id, nil
}

// Validate checks the session and, on success, re-extends its expiry to
// now+TTL in a single conditional storage update. It returns the
// post-extension record.
//
// ErrNotFound and ErrExpired are expected negative outcomes; any other error
// means the storage layer failed and says nothing about session validity.
func (m *Manager) Validate(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	now := m.now()
	touched, err := m.store.Touch(ctx, id, now, now.Add(m.cfg.TTL))
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	if !touched {
		// The conditional update matched nothing: the row is gone or past
		// its expiry. A concurrent cleanup deleting the row resolves to
		// not-found here, never to a resurrected session.
		if _, err := m.store.Get(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		return nil, ErrExpired
	}

	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Destroyed between touch and read.
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return s, nil
}

// IsValid reports session validity as a boolean. Unknown and expired
// sessions yield (false, nil); only storage failures produce an error.
func (m *Manager) IsValid(ctx context.Context, id string) (bool, error) {
	_, err := m.Validate(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrExpired):
		return false, nil
	default:
		return false, err
	}
}

// SetValue stores a key/value pair in the session data mapping. The
// read-modify-write happens atomically inside the store.
func (m *Manager) SetValue(ctx context.Context, id, key string, value any) error {
	if key == "" {
		return ErrInvalidKey
	}
	if id == "" {
		return ErrNotFound
	}

	now := m.now()
	ok, err := m.store.MergeData(ctx, id, map[string]any{key: value}, now)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	if !ok {
		if _, err := m.store.Get(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrNotFound
			}
			return errors.Join(ErrStorageUnavailable, err)
		}
		return ErrExpired
	}
	return nil
}

// GetValue reads a key from the session data mapping. The boolean reports
// whether the key is present; a missing or expired session is reported via
// ErrNotFound/ErrExpired, never as a default value.
func (m *Manager) GetValue(ctx context.Context, id, key string) (any, bool, error) {
	s, err := m.liveSession(ctx, id)
	if err != nil {
		return nil, false, err
	}
	v, ok := s.Get(key)
	return v, ok, nil
}

// GetSession returns the session if it exists and has not expired. Unlike
// Validate it does not extend the expiry.
func (m *Manager) GetSession(ctx context.Context, id string) (*Session, error) {
	return m.liveSession(ctx, id)
}

// Destroy deletes the session. Destroying an unknown or already destroyed
// session is not an error.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	m.log.InfoContext(ctx, "session destroyed")
	return nil
}

// DestroyUserSessions deletes every session owned by the user and returns
// the number removed.
func (m *Manager) DestroyUserSessions(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrInvalidUserID
	}
	n, err := m.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	m.log.InfoContext(ctx, "user sessions destroyed", "user_id", userID, "count", n)
	return n, nil
}

// CleanupExpired deletes all sessions past their expiry and returns the
// number removed. Safe to run concurrently with any other operation.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	if n > 0 {
		m.log.InfoContext(ctx, "expired sessions removed", "count", n)
	}
	return n, nil
}

// ActiveSessionsForUser returns the user's currently valid sessions, newest
// first. Supports multiple concurrent sessions per user.
func (m *Manager) ActiveSessionsForUser(ctx context.Context, userID string) ([]Session, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	sessions, err := m.store.ActiveByUser(ctx, userID, m.now())
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return sessions, nil
}

// Stats summarizes the live session population.
type Stats struct {
	ActiveSessions int64         `json:"active_sessions"`
	Timeout        time.Duration `json:"timeout"`
}

// Stats reports the number of unexpired sessions and the configured timeout.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	n, err := m.store.CountActive(ctx, m.now())
	if err != nil {
		return Stats{}, errors.Join(ErrStorageUnavailable, err)
	}
	return Stats{ActiveSessions: n, Timeout: m.cfg.TTL}, nil
}

// RunCleanup sweeps expired sessions on the configured interval until the
// context is canceled. It blocks; run it on its own goroutine.
func (m *Manager) RunCleanup(ctx context.Context) {
	if m.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := m.CleanupExpired(ctx); err != nil {
				m.log.ErrorContext(ctx, "session cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// liveSession fetches the session and maps an expired record to ErrExpired.
func (m *Manager) liveSession(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	if s.ExpiredAt(m.now()) {
		return nil, ErrExpired
	}
	return s, nil
}

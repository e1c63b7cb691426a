package consent

import (
	"context"
	"log/slog"
	"time"
)

// Registry exposes consent operations over a Store.
type Registry struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates a consent registry. Panics on nil store; that is a
// wiring bug, not a runtime condition.
func NewRegistry(store Store, opts ...Option) *Registry {
	if store == nil {
		panic("consent: store cannot be nil")
	}

	r := &Registry{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores the user's decision for one consent type, replacing any
// previous decision.
func (r *Registry) Record(ctx context.Context, userID, consentType string, granted bool) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	if consentType == "" {
		return ErrInvalidType
	}

	rec := Record{
		UserID:    userID,
		Type:      consentType,
		Granted:   granted,
		Timestamp: r.now().UTC(),
	}
	if err := r.store.Upsert(ctx, rec); err != nil {
		return err
	}

	r.log.InfoContext(ctx, "consent recorded",
		"user_id", userID, "consent_type", consentType, "granted", granted)
	return nil
}

// Status returns the user's decision for one consent type. recorded is false
// when no decision exists; granted is false in that case. A user who was
// never asked has not consented.
func (r *Registry) Status(ctx context.Context, userID, consentType string) (granted, recorded bool, err error) {
	if userID == "" {
		return false, false, ErrInvalidUserID
	}
	if consentType == "" {
		return false, false, ErrInvalidType
	}

	rec, ok, err := r.store.Get(ctx, userID, consentType)
	if err != nil {
		return false, false, err
	}
	if !ok {
		return false, false, nil
	}
	return rec.Granted, true, nil
}

// Granted reports whether the user has granted the given consent type.
// Absent decisions count as not granted.
func (r *Registry) Granted(ctx context.Context, userID, consentType string) (bool, error) {
	granted, _, err := r.Status(ctx, userID, consentType)
	return granted, err
}

// All returns the user's decisions keyed by consent type.
func (r *Registry) All(ctx context.Context, userID string) (map[string]bool, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	recs, err := r.store.All(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(recs))
	for _, rec := range recs {
		out[rec.Type] = rec.Granted
	}
	return out, nil
}

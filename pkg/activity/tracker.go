package activity

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Tracker writes structured events to the activity log and exposes its read
// queries. It is a thin orchestration layer: all durable state lives in the
// Storage.
type Tracker struct {
	storage Storage
	log     *slog.Logger
	now     func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// WithClock injects the time source for tests. Defaults to time.Now.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker creates an activity tracker over the given storage.
func NewTracker(storage Storage, opts ...TrackerOption) *Tracker {
	if storage == nil {
		panic("activity: storage cannot be nil")
	}
	t := &Tracker{
		storage: storage,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// EventOption attaches optional attributes to an event being logged.
type EventOption func(*Event)

// WithSession records the originating session. The reference is weak; the
// event remains valid after the session is destroyed.
func WithSession(sessionID string) EventOption {
	return func(e *Event) {
		e.SessionID = sessionID
	}
}

// WithData adds one key/value pair to the event payload.
func WithData(key string, value any) EventOption {
	return func(e *Event) {
		if e.Data == nil {
			e.Data = make(map[string]any)
		}
		e.Data[key] = value
	}
}

// WithPayload merges a whole payload mapping into the event.
func WithPayload(payload map[string]any) EventOption {
	return func(e *Event) {
		if len(payload) == 0 {
			return
		}
		if e.Data == nil {
			e.Data = make(map[string]any, len(payload))
		}
		for k, v := range payload {
			e.Data[k] = v
		}
	}
}

// WithIP records the client address on the event.
func WithIP(ip string) EventOption {
	return func(e *Event) {
		e.IP = ip
	}
}

// WithUserAgent records the client user agent on the event.
func WithUserAgent(ua string) EventOption {
	return func(e *Event) {
		e.UserAgent = ua
	}
}

// LogEvent appends one event and returns its id. The write succeeds
// regardless of whether the referenced session still exists. Unrecognized
// event types are accepted as custom with the literal string preserved.
func (t *Tracker) LogEvent(ctx context.Context, userID string, eventType EventType, opts ...EventOption) (int64, error) {
	if userID == "" {
		return 0, ErrInvalidUserID
	}
	if eventType.IsZero() {
		return 0, ErrInvalidEventType
	}

	e := &Event{
		UserID:    userID,
		Type:      eventType,
		Timestamp: t.now(),
	}
	for _, opt := range opts {
		opt(e)
	}

	id, err := t.storage.Insert(ctx, e)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}

	t.log.DebugContext(ctx, "event tracked", "user_id", userID, "event_type", eventType.String())
	return id, nil
}

// LogLogin records a login event bound to its new session.
func (t *Tracker) LogLogin(ctx context.Context, userID, sessionID, ip string) (int64, error) {
	return t.LogEvent(ctx, userID, Login, WithSession(sessionID), WithIP(ip))
}

// LogLogout records a logout event. The session is typically being
// destroyed at the same moment; the event is appended regardless.
func (t *Tracker) LogLogout(ctx context.Context, userID, sessionID string) (int64, error) {
	return t.LogEvent(ctx, userID, Logout, WithSession(sessionID))
}

// LogPageView records a page view.
func (t *Tracker) LogPageView(ctx context.Context, userID, page string, opts ...EventOption) (int64, error) {
	opts = append(opts, WithData("page", page))
	return t.LogEvent(ctx, userID, PageView, opts...)
}

// LogAction records a named user action with optional details.
func (t *Tracker) LogAction(ctx context.Context, userID, action string, details map[string]any, opts ...EventOption) (int64, error) {
	opts = append(opts, WithData("action", action), WithPayload(details))
	return t.LogEvent(ctx, userID, Action, opts...)
}

// UserActivities returns the user's events newest first, narrowed by the
// filter. A pure read.
func (t *Tracker) UserActivities(ctx context.Context, userID string, f Filter) ([]Event, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	events, err := t.storage.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return events, nil
}

// ActivitiesInWindow returns all events with start <= timestamp < end.
func (t *Tracker) ActivitiesInWindow(ctx context.Context, start, end time.Time) ([]Event, error) {
	events, err := t.storage.ListWindow(ctx, start, end)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return events, nil
}

// CountForUser counts the user's events, optionally by type (pass the zero
// EventType for all types).
func (t *Tracker) CountForUser(ctx context.Context, userID string, eventType EventType) (int64, error) {
	if userID == "" {
		return 0, ErrInvalidUserID
	}
	n, err := t.storage.CountByUser(ctx, userID, eventType)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return n, nil
}

// DeleteOlderThan removes events whose timestamp precedes cutoff. Used by
// the retention sweep; idempotent.
func (t *Tracker) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := t.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	if n > 0 {
		t.log.InfoContext(ctx, "old activities removed", "count", n)
	}
	return n, nil
}

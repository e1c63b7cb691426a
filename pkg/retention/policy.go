package retention

import (
	"context"
	"log/slog"
	"time"
)

// SessionPruner deletes sessions created before a cutoff. Both
// session.MemoryStore and session.PostgresStore satisfy it.
type SessionPruner interface {
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActivityPruner deletes activities older than a cutoff. Both
// activity.MemoryStorage and activity.PostgresStorage satisfy it.
type ActivityPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Summary reports one application of the policy.
type Summary struct {
	ActivitiesDeleted int64     `json:"activities_deleted"`
	SessionsDeleted   int64     `json:"sessions_deleted"`
	RetentionDays     int       `json:"retention_days"`
	AppliedAt         time.Time `json:"applied_at"`
}

// Policy deletes data older than the retention window.
type Policy struct {
	sessions   SessionPruner
	activities ActivityPruner
	cfg        Config
	log        *slog.Logger
	now        func() time.Time
}

// Option configures a Policy.
type Option func(*Policy)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(p *Policy) { p.cfg = cfg }
}

// WithRetentionDays sets the retention window in days.
func WithRetentionDays(days int) Option {
	return func(p *Policy) { p.cfg.RetentionDays = days }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(p *Policy) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPolicy creates a retention policy. Panics on nil pruners; returns an
// error for an invalid retention window.
func NewPolicy(sessions SessionPruner, activities ActivityPruner, opts ...Option) (*Policy, error) {
	if sessions == nil {
		panic("retention: session pruner cannot be nil")
	}
	if activities == nil {
		panic("retention: activity pruner cannot be nil")
	}

	p := &Policy{
		sessions:   sessions,
		activities: activities,
		cfg:        DefaultConfig(),
		log:        slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) cutoff() time.Time {
	return p.now().UTC().AddDate(0, 0, -p.cfg.RetentionDays)
}

// DeleteOldActivities removes activities older than the retention window.
func (p *Policy) DeleteOldActivities(ctx context.Context) (int64, error) {
	n, err := p.activities.DeleteOlderThan(ctx, p.cutoff())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.log.InfoContext(ctx, "old activities deleted", "count", n)
	}
	return n, nil
}

// DeleteOldSessions removes sessions created before the retention window.
func (p *Policy) DeleteOldSessions(ctx context.Context) (int64, error) {
	n, err := p.sessions.DeleteCreatedBefore(ctx, p.cutoff())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.log.InfoContext(ctx, "old sessions deleted", "count", n)
	}
	return n, nil
}

// Apply enforces the policy on both stores and reports what was removed.
// The two deletes are independent; a failure in the second still reports
// the first through the returned summary.
func (p *Policy) Apply(ctx context.Context) (Summary, error) {
	summary := Summary{
		RetentionDays: p.cfg.RetentionDays,
		AppliedAt:     p.now().UTC(),
	}

	var err error
	if summary.ActivitiesDeleted, err = p.DeleteOldActivities(ctx); err != nil {
		return summary, err
	}
	if summary.SessionsDeleted, err = p.DeleteOldSessions(ctx); err != nil {
		return summary, err
	}

	p.log.InfoContext(ctx, "retention policy applied",
		"activities_deleted", summary.ActivitiesDeleted,
		"sessions_deleted", summary.SessionsDeleted,
		"retention_days", summary.RetentionDays)
	return summary, nil
}

// Run applies the policy on the configured interval until ctx is canceled.
// Intended to run in its own goroutine.
func (p *Policy) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Apply(ctx); err != nil {
				p.log.ErrorContext(ctx, "retention policy failed", "error", err)
			}
		}
	}
}

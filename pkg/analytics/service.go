package analytics

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/trackkit/trackkit/pkg/activity"
)

// ActivityReader is the view of the activity log the reports need. Both
// activity.MemoryStorage and activity.PostgresStorage satisfy it.
type ActivityReader interface {
	ListByUser(ctx context.Context, userID string, f activity.Filter) ([]activity.Event, error)
	ListWindow(ctx context.Context, start, end time.Time) ([]activity.Event, error)
	CountByUser(ctx context.Context, userID string, eventType activity.EventType) (int64, error)
	CountsByType(ctx context.Context, since time.Time) (map[string]int64, error)
	CountsByTypeForUser(ctx context.Context, userID string) (map[string]int64, error)
	DistinctUsers(ctx context.Context, start, end time.Time) (int64, error)
	DistinctUsersByType(ctx context.Context, eventType activity.EventType) (int64, error)
	TopUsers(ctx context.Context, limit int) ([]activity.UserCount, error)
	Journey(ctx context.Context, userID, sessionID string, limit int) ([]activity.Event, error)
}

// SessionReader is the view of the session store the reports need. Both
// session.MemoryStore and session.PostgresStore satisfy it.
type SessionReader interface {
	CountByUser(ctx context.Context, userID string) (int64, error)
	AvgDuration(ctx context.Context, userID string) (time.Duration, error)
}

// UserSummary aggregates one user's footprint across both stores.
type UserSummary struct {
	UserID          string           `json:"user_id"`
	TotalActivities int64            `json:"total_activities"`
	TotalSessions   int64            `json:"total_sessions"`
	LastActivity    time.Time        `json:"last_activity,omitzero"`
	EventBreakdown  map[string]int64 `json:"event_breakdown"`
}

// PageCount pairs a page with its view count.
type PageCount struct {
	Page  string `json:"page"`
	Views int64  `json:"views"`
}

// FunnelStep reports one stage of a conversion funnel. ConversionRate is the
// percentage of the previous step's users who reached this one; it is zero
// for the first step.
type FunnelStep struct {
	Step           string  `json:"step"`
	Users          int64   `json:"users"`
	ConversionRate float64 `json:"conversion_rate,omitempty"`
}

// EventCount pairs an event type with its total occurrence count.
type EventCount struct {
	Type  string `json:"event_type"`
	Count int64  `json:"count"`
}

// Service computes reports. Construct with NewService.
type Service struct {
	activities ActivityReader
	sessions   SessionReader
	log        *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an analytics service. Panics on nil readers; that is a
// wiring bug, not a runtime condition.
func NewService(activities ActivityReader, sessions SessionReader, opts ...Option) *Service {
	if activities == nil {
		panic("analytics: activity reader cannot be nil")
	}
	if sessions == nil {
		panic("analytics: session reader cannot be nil")
	}

	s := &Service{
		activities: activities,
		sessions:   sessions,
		log:        slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserSummary reports the user's totals, latest activity, and per-type
// breakdown. Users with no data get a zeroed summary, not an error.
func (s *Service) UserSummary(ctx context.Context, userID string) (UserSummary, error) {
	if userID == "" {
		return UserSummary{}, ErrInvalidUserID
	}

	summary := UserSummary{UserID: userID}

	var err error
	if summary.TotalActivities, err = s.activities.CountByUser(ctx, userID, activity.EventType{}); err != nil {
		return UserSummary{}, err
	}
	if summary.TotalSessions, err = s.sessions.CountByUser(ctx, userID); err != nil {
		return UserSummary{}, err
	}
	if summary.EventBreakdown, err = s.activities.CountsByTypeForUser(ctx, userID); err != nil {
		return UserSummary{}, err
	}

	latest, err := s.activities.ListByUser(ctx, userID, activity.Filter{Limit: 1})
	if err != nil {
		return UserSummary{}, err
	}
	if len(latest) > 0 {
		summary.LastActivity = latest[0].Timestamp
	}

	return summary, nil
}

// ActiveUsers counts distinct users with at least one event in the trailing
// window.
func (s *Service) ActiveUsers(ctx context.Context, window time.Duration) (int64, error) {
	if window <= 0 {
		return 0, ErrInvalidWindow
	}

	now := s.now().UTC()
	return s.activities.DistinctUsers(ctx, now.Add(-window), now)
}

// EventBreakdown reports event counts grouped by type for events at or after
// since.
func (s *Service) EventBreakdown(ctx context.Context, since time.Time) (map[string]int64, error) {
	return s.activities.CountsByType(ctx, since)
}

// TopUsers ranks users by total activity count.
func (s *Service) TopUsers(ctx context.Context, limit int) ([]activity.UserCount, error) {
	return s.activities.TopUsers(ctx, limit)
}

// AvgSessionDuration reports the average session length, measured from
// creation to last activity. Empty userID averages over all sessions.
func (s *Service) AvgSessionDuration(ctx context.Context, userID string) (time.Duration, error) {
	return s.sessions.AvgDuration(ctx, userID)
}

// UserJourney returns the user's events oldest first, optionally narrowed to
// one session, so callers can replay the sequence of actions.
func (s *Service) UserJourney(ctx context.Context, userID, sessionID string, limit int) ([]activity.Event, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.activities.Journey(ctx, userID, sessionID, limit)
}

// ActivityByHour buckets events in the trailing window by UTC hour of day.
// Only hours with at least one event appear in the result.
func (s *Service) ActivityByHour(ctx context.Context, window time.Duration) (map[int]int64, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	now := s.now().UTC()
	events, err := s.activities.ListWindow(ctx, now.Add(-window), now)
	if err != nil {
		return nil, err
	}

	hours := make(map[int]int64)
	for _, e := range events {
		hours[e.Timestamp.UTC().Hour()]++
	}
	return hours, nil
}

// ConversionFunnel counts distinct users who performed each step's event
// type, with step-over-step conversion percentages. Steps are counted
// independently across all time; a user is counted for a step regardless of
// whether they completed earlier steps.
func (s *Service) ConversionFunnel(ctx context.Context, steps []activity.EventType) ([]FunnelStep, error) {
	if len(steps) == 0 {
		return nil, ErrInvalidFunnel
	}

	out := make([]FunnelStep, 0, len(steps))
	for i, step := range steps {
		users, err := s.activities.DistinctUsersByType(ctx, step)
		if err != nil {
			return nil, err
		}
		fs := FunnelStep{Step: step.String(), Users: users}
		if i > 0 && out[i-1].Users > 0 {
			fs.ConversionRate = float64(users) / float64(out[i-1].Users) * 100
		}
		out = append(out, fs)
	}
	return out, nil
}

// CommonPatterns ranks event types by total occurrence count across all
// users and all time, most frequent first.
func (s *Service) CommonPatterns(ctx context.Context, limit int) ([]EventCount, error) {
	if limit <= 0 {
		limit = 10
	}

	counts, err := s.activities.CountsByType(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	out := make([]EventCount, 0, len(counts))
	for typ, n := range counts {
		out = append(out, EventCount{Type: typ, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FeatureUsage reports how often the user performed each event type.
func (s *Service) FeatureUsage(ctx context.Context, userID string) (map[string]int64, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.activities.CountsByTypeForUser(ctx, userID)
}

// PopularPages ranks pages by page_view count over the trailing window.
// Events without a string "page" payload are skipped.
func (s *Service) PopularPages(ctx context.Context, window time.Duration, limit int) ([]PageCount, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	if limit <= 0 {
		limit = 10
	}

	now := s.now().UTC()
	events, err := s.activities.ListWindow(ctx, now.Add(-window), now)
	if err != nil {
		return nil, err
	}

	views := make(map[string]int64)
	for _, e := range events {
		if e.Type != activity.PageView {
			continue
		}
		page, ok := e.Data["page"].(string)
		if !ok || page == "" {
			continue
		}
		views[page]++
	}

	out := make([]PageCount, 0, len(views))
	for page, n := range views {
		out = append(out, PageCount{Page: page, Views: n})
	}
	sortPageCounts(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sortPageCounts orders by views descending, page ascending on ties.
func sortPageCounts(pages []PageCount) {
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Views != pages[j].Views {
			return pages[i].Views > pages[j].Views
		}
		return pages[i].Page < pages[j].Page
	})
}

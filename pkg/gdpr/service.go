package gdpr

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service implements the data-subject rights over a Store.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
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

// NewService creates a GDPR service. Panics on nil store; that is a wiring
// bug, not a runtime condition.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("gdpr: store cannot be nil")
	}

	s := &Service{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export assembles the user's complete data into one document. Users with no
// data get an empty document, not an error.
func (s *Service) Export(ctx context.Context, userID string) (Export, error) {
	if userID == "" {
		return Export{}, ErrInvalidUserID
	}

	data, err := s.store.ExportUser(ctx, userID)
	if err != nil {
		return Export{}, err
	}

	doc := Export{
		ExportID:   uuid.NewString(),
		UserID:     userID,
		ExportedAt: s.now().UTC(),
		UserData:   data,
	}

	s.log.InfoContext(ctx, "user data exported",
		"user_id", userID,
		"export_id", doc.ExportID,
		"sessions", len(doc.Sessions),
		"activities", len(doc.Activities))
	return doc, nil
}

// Erase removes the user from every table as one unit and reports per-table
// counts. Erasing an unknown user yields zero counts. On error nothing was
// removed.
func (s *Service) Erase(ctx context.Context, userID string) (ErasureSummary, error) {
	if userID == "" {
		return ErasureSummary{}, ErrInvalidUserID
	}

	summary, err := s.store.EraseUser(ctx, userID)
	if err != nil {
		return ErasureSummary{}, err
	}
	summary.UserID = userID
	summary.ErasedAt = s.now().UTC()

	s.log.InfoContext(ctx, "user data erased",
		"user_id", userID,
		"sessions", summary.Sessions,
		"activities", summary.Activities,
		"preferences", summary.Preferences,
		"consents", summary.Consents)
	return summary, nil
}

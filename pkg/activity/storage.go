package activity

import (
	"context"
	"time"
)

// Storage defines the persistence contract for the activity log. Writes are
// insert-only; reads must see a consistent snapshot per row even while
// writes are in progress.
type Storage interface {
	// Insert appends one event and returns its monotonically increasing id.
	Insert(ctx context.Context, e *Event) (int64, error)

	// ListByUser returns the user's events newest first (timestamp
	// descending, insertion id breaking ties), narrowed by the filter.
	ListByUser(ctx context.Context, userID string, f Filter) ([]Event, error)

	// ListWindow returns all events with start <= timestamp < end, newest
	// first.
	ListWindow(ctx context.Context, start, end time.Time) ([]Event, error)

	// ListAllByUser returns every event for the user, newest first. Used
	// by data export.
	ListAllByUser(ctx context.Context, userID string) ([]Event, error)

	// CountByUser counts the user's events, optionally restricted to one
	// type.
	CountByUser(ctx context.Context, userID string, eventType EventType) (int64, error)

	// DeleteOlderThan removes events with timestamp before cutoff and
	// returns the number removed. The retention sweep's only mutation.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteByUser removes all of the user's events and returns the
	// number removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// BatchStorage is implemented by storages that support bulk appends, which
// the AsyncWriter requires. The batch must land atomically: either every
// event is stored or none is.
type BatchStorage interface {
	InsertBatch(ctx context.Context, events []Event) error
}

package session

import (
	"context"
	"time"
)

// Store defines the persistence contract for session records. Time is always
// passed in explicitly so implementations stay deterministic and the Manager
// remains the single clock owner.
//
// Implementations must make Touch and MergeData atomic with respect to
// concurrent calls on the same identifier: the visible end state corresponds
// to some sequential ordering of the writers, never a lost update.
type Store interface {
	// Insert stores a new session record. The caller's now is the record's
	// creation instant; backends that derive a TTL compute it against now,
	// never against the wall clock.
	Insert(ctx context.Context, s *Session, now time.Time) error

	// Get retrieves a session by identifier regardless of expiry.
	// Returns ErrNotFound when no record exists.
	Get(ctx context.Context, id string) (*Session, error)

	// Touch performs the sliding re-extension as one conditional update:
	// set last_activity=now and expires_at=expiresAt only if the session
	// still exists and has not expired at now. Reports whether a row was
	// updated.
	Touch(ctx context.Context, id string, now, expiresAt time.Time) (bool, error)

	// MergeData merges kv into the session data mapping as one atomic
	// read-modify-write, updating last_activity. Reports whether a live
	// row was updated.
	MergeData(ctx context.Context, id string, kv map[string]any, now time.Time) (bool, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session with expires_at before now and
	// returns the number removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// ActiveByUser returns the user's unexpired sessions, newest first.
	ActiveByUser(ctx context.Context, userID string, now time.Time) ([]Session, error)

	// ListByUser returns all of the user's sessions including expired
	// ones. Used by data export.
	ListByUser(ctx context.Context, userID string) ([]Session, error)

	// DeleteByUser removes all of the user's sessions and returns the
	// number removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// CountActive returns the number of unexpired sessions at now.
	CountActive(ctx context.Context, now time.Time) (int64, error)
}

package consent

import (
	"context"
	"time"
)

// Record is one user's latest decision for one consent type.
type Record struct {
	UserID    string    `json:"user_id"`
	Type      string    `json:"consent_type"`
	Granted   bool      `json:"granted"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists consent decisions keyed by (user, type).
//
// Upsert replaces any previous decision for the same key. Get reports
// absence through its boolean, not an error. DeleteByUser returns how many
// decisions were removed.
type Store interface {
	Upsert(ctx context.Context, rec Record) error
	Get(ctx context.Context, userID, consentType string) (Record, bool, error)
	All(ctx context.Context, userID string) ([]Record, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

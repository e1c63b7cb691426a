package preference

import (
	"context"
	"time"
)

// Store persists one preference document per user.
//
// Load returns nil (no error) for users without a stored document; mapping
// that onto defaults is the Manager's job, not the store's. Save upserts.
// Delete reports whether a document existed.
type Store interface {
	Save(ctx context.Context, userID string, prefs Preferences, now time.Time) error
	Load(ctx context.Context, userID string) (Preferences, error)
	Delete(ctx context.Context, userID string) (bool, error)
}

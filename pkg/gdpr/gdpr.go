package gdpr

import (
	"context"
	"time"

	"github.com/trackkit/trackkit/pkg/activity"
	"github.com/trackkit/trackkit/pkg/consent"
	"github.com/trackkit/trackkit/pkg/preference"
	"github.com/trackkit/trackkit/pkg/session"
)

// UserData is everything held about one user, as read from the store.
type UserData struct {
	Sessions    []session.Session      `json:"sessions"`
	Activities  []activity.Event       `json:"activities"`
	Preferences preference.Preferences `json:"preferences,omitempty"`
	Consent     []consent.Record       `json:"consent"`
}

// Export is the right-to-access document handed to the user.
type Export struct {
	ExportID   string    `json:"export_id"`
	UserID     string    `json:"user_id"`
	ExportedAt time.Time `json:"exported_at"`
	UserData
}

// ErasureSummary reports what Erase removed, per table.
type ErasureSummary struct {
	UserID      string    `json:"user_id"`
	Sessions    int64     `json:"sessions_deleted"`
	Activities  int64     `json:"activities_deleted"`
	Preferences int64     `json:"preferences_deleted"`
	Consents    int64     `json:"consent_deleted"`
	ErasedAt    time.Time `json:"erased_at"`
}

// Total returns the number of rows removed across all tables.
func (s ErasureSummary) Total() int64 {
	return s.Sessions + s.Activities + s.Preferences + s.Consents
}

// Store reads and erases a user's data across all four tables.
//
// EraseUser is all-or-nothing: on error no data has been removed. Both
// operations are defined for users with no data.
type Store interface {
	ExportUser(ctx context.Context, userID string) (UserData, error)
	EraseUser(ctx context.Context, userID string) (ErasureSummary, error)
}

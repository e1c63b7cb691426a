// Package activity implements the append-only activity log: structured,
// timestamped events keyed by user and optionally by session, with the read
// queries analytics and compliance features are built on.
//
// Events are immutable once written. There is no update path; the only
// destructive operations are the retention sweep (DeleteOlderThan) and the
// per-user erasure used by GDPR deletion.
//
// Logging is deliberately independent of session validity: a logout event is
// recorded even as its session is being destroyed, and events routinely
// outlive the session they reference. The session id on an event is a weak
// reference with no integrity enforcement.
//
// # Usage
//
//	tracker := activity.NewTracker(activity.NewMemoryStorage())
//
//	id, err := tracker.LogEvent(ctx, "user-42", activity.PageView,
//		activity.WithSession(sessionID),
//		activity.WithData("page", "/dashboard"),
//		activity.WithIP("203.0.113.7"),
//	)
//
//	events, err := tracker.UserActivities(ctx, "user-42", activity.Filter{Limit: 20})
//
// Event types form an open enumeration: login, logout, page_view and action
// are known cases, and any other string is carried verbatim as a custom type
// so downstream consumers can still switch exhaustively over the known set.
//
// For high-volume ingestion an AsyncWriter can batch events in front of any
// BatchStorage; see NewAsyncWriter.
package activity

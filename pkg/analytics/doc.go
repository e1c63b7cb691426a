// Package analytics derives read-only reports from the session and activity
// stores.
//
// The service writes nothing and holds no state of its own: every report is
// computed from the narrow ActivityReader and SessionReader views, which the
// storage implementations in pkg/activity and pkg/session already satisfy.
//
//	svc := analytics.NewService(activityStorage, sessionStore)
//	summary, err := svc.UserSummary(ctx, "user-1")
//	active, err := svc.ActiveUsers(ctx, 24*time.Hour)
package analytics

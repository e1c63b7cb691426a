// Package retention enforces a data retention policy over the session and
// activity stores.
//
// A Policy deletes activities whose timestamp, and sessions whose creation
// time, fall outside the retention window. The deletes are single storage
// operations, so the policy is safe to apply while live traffic writes to
// the same tables.
//
//	policy := retention.NewPolicy(sessionStore, activityStorage,
//		retention.WithRetentionDays(90))
//	summary, err := policy.Apply(ctx)
//
// Run applies the policy on an interval until the context is canceled.
package retention

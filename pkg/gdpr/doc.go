// Package gdpr implements the data-subject rights over the store: right to
// access (Export) and right to be forgotten (Erase).
//
// Export assembles everything held about a user into a single document with
// a unique export id. Erase removes the user from all four tables as one
// unit: the Postgres implementation runs a single transaction, so a failure
// leaves either all of the user's data or none of it. Erasing a user with no
// data succeeds with zero counts.
//
//	svc := gdpr.NewService(store)
//	doc, err := svc.Export(ctx, "user-1")
//	summary, err := svc.Erase(ctx, "user-1")
package gdpr

// Package consent tracks explicit user consent decisions.
//
// Each decision is keyed by user and consent type ("analytics", "marketing",
// and so on) and records whether consent was granted together with when the
// decision was made. Re-recording overwrites the previous decision; the store
// keeps the latest state, not a history.
//
// A user with no recorded decision has NOT granted consent. Status reports
// that case distinctly so callers can tell "declined" from "never asked":
//
//	granted, recorded, err := reg.Status(ctx, "user-1", "analytics")
//
// Two Store implementations ship with the package: MemoryStore for tests and
// single-process use, PostgresStore for production.
package consent

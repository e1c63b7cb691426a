// Package preference stores per-user preference documents.
//
// Each user owns a single JSON document. Reads for users without a stored
// document return the package defaults, so callers never need a separate
// "first visit" path; the defaults are only materialized in storage once the
// user writes something.
//
// # Usage
//
//	mgr := preference.NewManager(preference.NewMemoryStore())
//
//	prefs, err := mgr.Get(ctx, "user-1") // defaults until first write
//	err = mgr.UpdateKey(ctx, "user-1", "theme", "dark")
//
// Privacy settings live inside the same document under the "privacy" key.
// The Privacy wrapper exposes them as first-class operations:
//
//	priv := preference.NewPrivacy(mgr)
//	err = priv.SetProfileVisibility(ctx, "user-1", true)
//
// Two Store implementations ship with the package: MemoryStore for tests and
// single-process use, PostgresStore for production.
package preference

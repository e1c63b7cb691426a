// Package session implements the session lifecycle: creation with
// cryptographically strong identifiers, validation with sliding expiration,
// per-session key/value data, explicit destruction, and periodic cleanup of
// expired records.
//
// The package is storage-agnostic. A Store implementation owns all durable
// state; the Manager is the only writer and coordinates every lifecycle
// transition through it. Three stores ship with the package: MemoryStore for
// tests and single-process setups, PostgresStore for durable deployments, and
// RedisStore when sessions should live in a shared cache with native TTLs.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	mgr, err := session.NewManager(store, session.WithConfig(session.Config{TTL: time.Hour}))
//	if err != nil {
//		// invalid configuration
//	}
//
//	id, err := mgr.Create(ctx, "user-42", "203.0.113.7", "curl/8.0")
//	sess, err := mgr.Validate(ctx, id) // extends expiry on success
//	_ = mgr.Destroy(ctx, id)
//
// # Failure semantics
//
// Unknown and expired sessions are expected negative outcomes, reported with
// ErrNotFound and ErrExpired so callers can distinguish "please log in again"
// from "unknown session". Backend failures are wrapped in
// ErrStorageUnavailable and must never be interpreted as an invalid session.
//
// # Concurrency
//
// Two concurrent validations of the same identifier serialize at the storage
// layer: the sliding re-extension is issued as a single conditional update,
// so the surviving expiry always corresponds to one of the writers and a
// racing cleanup cannot resurrect a session.
package session

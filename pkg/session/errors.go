package session

import "errors"

var (
	// ErrNotFound indicates no session exists for the identifier.
	ErrNotFound = errors.New("session.not_found")

	// ErrExpired indicates the session exists but is past its expiry.
	// Distinct from ErrNotFound so callers can message users appropriately.
	ErrExpired = errors.New("session.expired")

	// ErrStorageUnavailable indicates the backing store could not complete
	// an operation. Never interpreted as an invalid session.
	ErrStorageUnavailable = errors.New("session.storage_unavailable")

	// ErrInvalidUserID indicates an empty user id was rejected before any
	// storage access.
	ErrInvalidUserID = errors.New("session.invalid_user_id")

	// ErrInvalidTimeout indicates a non-positive session timeout.
	ErrInvalidTimeout = errors.New("session.invalid_timeout")

	// ErrInvalidSession indicates a malformed session record was passed to
	// a store.
	ErrInvalidSession = errors.New("session.invalid_record")

	// ErrInvalidKey indicates an empty session-data key.
	ErrInvalidKey = errors.New("session.invalid_key")
)

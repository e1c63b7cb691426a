package preference

import "errors"

var (
	// ErrInvalidUserID is returned when an operation receives an empty user id.
	ErrInvalidUserID = errors.New("preference.invalid_user_id")

	// ErrInvalidKey is returned when a key-level operation receives an empty key.
	ErrInvalidKey = errors.New("preference.invalid_key")

	// ErrStorageUnavailable is returned when the backing store fails. The
	// underlying driver error is joined for logs.
	ErrStorageUnavailable = errors.New("preference.storage_unavailable")
)

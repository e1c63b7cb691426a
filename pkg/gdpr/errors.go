package gdpr

import "errors"

var (
	// ErrInvalidUserID is returned when an operation receives an empty user id.
	ErrInvalidUserID = errors.New("gdpr.invalid_user_id")

	// ErrStorageUnavailable is returned when the backing store fails. For
	// Erase this means the transaction rolled back and no data was removed.
	ErrStorageUnavailable = errors.New("gdpr.storage_unavailable")
)

package consent

import "errors"

var (
	// ErrInvalidUserID is returned when an operation receives an empty user id.
	ErrInvalidUserID = errors.New("consent.invalid_user_id")

	// ErrInvalidType is returned when an operation receives an empty consent type.
	ErrInvalidType = errors.New("consent.invalid_type")

	// ErrStorageUnavailable is returned when the backing store fails. The
	// underlying driver error is joined for logs.
	ErrStorageUnavailable = errors.New("consent.storage_unavailable")
)

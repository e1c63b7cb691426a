package activity

import "errors"

var (
	// ErrInvalidUserID indicates an empty user id was rejected before any
	// storage access.
	ErrInvalidUserID = errors.New("activity.invalid_user_id")

	// ErrInvalidEventType indicates an event without a type.
	ErrInvalidEventType = errors.New("activity.invalid_event_type")

	// ErrStorageUnavailable indicates the backing store could not complete
	// an operation.
	ErrStorageUnavailable = errors.New("activity.storage_unavailable")

	// ErrWriterClosed indicates a write was attempted after the async
	// writer shut down.
	ErrWriterClosed = errors.New("activity.writer_closed")
)

package analytics

import "errors"

var (
	// ErrInvalidUserID is returned when a per-user report receives an empty
	// user id.
	ErrInvalidUserID = errors.New("analytics.invalid_user_id")

	// ErrInvalidWindow is returned when a report receives a non-positive
	// time window.
	ErrInvalidWindow = errors.New("analytics.invalid_window")

	// ErrInvalidFunnel is returned when a funnel report receives no steps.
	ErrInvalidFunnel = errors.New("analytics.invalid_funnel")
)

package retention

import "errors"

// ErrInvalidRetention is returned when the retention period or interval is
// not positive.
var ErrInvalidRetention = errors.New("retention.invalid_retention")

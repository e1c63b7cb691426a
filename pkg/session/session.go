package session

import (
	"maps"
	"time"
)

// Session is a durable session record. The Data mapping is serialized as JSON
// at the storage edge; in memory it holds plain string/number/bool/nested
// values produced by that round trip.
type Session struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	CreatedAt      time.Time      `json:"created_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
	LastActivityAt time.Time      `json:"last_activity_at"`
	Data           map[string]any `json:"data,omitempty"`
	IP             string         `json:"ip,omitempty"`
	UserAgent      string         `json:"user_agent,omitempty"`
}

// ExpiredAt reports whether the session is past its expiry at the given time.
func (s *Session) ExpiredAt(now time.Time) bool {
	return s != nil && !now.Before(s.ExpiresAt)
}

// Get retrieves a value from session data. The second return value is false
// when the key is absent.
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	val, ok := s.Data[key]
	return val, ok
}

// Duration returns the observed session duration, last activity minus
// creation time.
func (s *Session) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return s.LastActivityAt.Sub(s.CreatedAt)
}

// clone returns a deep-enough copy so store internals never alias caller
// maps.
func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Data != nil {
		cp.Data = make(map[string]any, len(s.Data))
		maps.Copy(cp.Data, s.Data)
	}
	return &cp
}

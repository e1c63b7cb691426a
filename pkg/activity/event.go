package activity

import (
	"time"
)

// Kind enumerates the closed set of known event-type cases plus the explicit
// custom case. Downstream consumers can switch exhaustively over Kind and
// still receive unrecognized types via KindCustom.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindLogin
	KindLogout
	KindPageView
	KindAction
	KindCustom
)

// EventType is a tagged variant: one of the known cases, or a custom case
// carrying the original type string verbatim. The zero value is no type at
// all (used by Filter to mean "no type filter").
type EventType struct {
	kind Kind
	name string
}

// Known event types.
var (
	Login    = EventType{kind: KindLogin, name: "login"}
	Logout   = EventType{kind: KindLogout, name: "logout"}
	PageView = EventType{kind: KindPageView, name: "page_view"}
	Action   = EventType{kind: KindAction, name: "action"}
)

// Custom wraps an arbitrary type string as a custom event type. Strings that
// spell a known type yield that known type instead, so parsing stays
// canonical no matter where a type string enters the system.
func Custom(name string) EventType {
	return ParseEventType(name)
}

// ParseEventType maps a type string onto the enumeration. Unrecognized
// strings are accepted as custom with the literal preserved.
func ParseEventType(s string) EventType {
	switch s {
	case Login.name:
		return Login
	case Logout.name:
		return Logout
	case PageView.name:
		return PageView
	case Action.name:
		return Action
	case "":
		return EventType{}
	default:
		return EventType{kind: KindCustom, name: s}
	}
}

// Kind returns the variant tag.
func (t EventType) Kind() Kind { return t.kind }

// String returns the canonical type string; for custom types this is the
// original literal.
func (t EventType) String() string { return t.name }

// IsZero reports whether no type is set.
func (t EventType) IsZero() bool { return t.kind == KindUnknown }

// MarshalText encodes the type as its canonical string.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.name), nil
}

// UnmarshalText decodes a type string, accepting unknown values as custom.
func (t *EventType) UnmarshalText(b []byte) error {
	*t = ParseEventType(string(b))
	return nil
}

// Event is a single activity log entry. Immutable once written.
type Event struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	SessionID string         `json:"session_id,omitempty"`
	Type      EventType      `json:"event_type"`
	Data      map[string]any `json:"event_data,omitempty"`
	IP        string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Filter narrows UserActivities reads.
type Filter struct {
	// Limit caps the number of returned events (default DefaultQueryLimit).
	Limit int
	// Offset skips that many most-recent events, for pagination.
	Offset int
	// Type restricts results to one event type when non-zero.
	Type EventType
}

// DefaultQueryLimit applies when a Filter carries no explicit limit.
const DefaultQueryLimit = 100

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultQueryLimit
	}
	return f.Limit
}

// UserCount pairs a user with an activity count, for top-user rankings.
type UserCount struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}

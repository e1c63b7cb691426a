package logger

import (
	"fmt"
	"log/slog"
)

// Group nests attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors logs multiple errors as a group of indexed attributes.
func Errors(errs ...error) slog.Attr {
	attrs := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err == nil {
			continue
		}
		attrs = append(attrs, slog.String(fmt.Sprintf("error_%d", i), err.Error()))
	}
	return Group("errors", attrs...)
}

// Error logs a single error under the conventional "error" key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// UserID tags a record with the acting user.
func UserID(id any) slog.Attr {
	return slog.Any("user_id", id)
}

// SessionID tags a record with the session it concerns.
func SessionID(id string) slog.Attr {
	return slog.String("session_id", id)
}

// EventType tags a record with an activity event type.
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

// RequestID tags a record with the request correlation id.
func RequestID(id any) slog.Attr {
	return slog.Any("request_id", id)
}

// Duration logs an elapsed time under the conventional "duration" key.
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component tags a record with the emitting component, e.g. "session.manager".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackkit/trackkit/pkg/logger"
)

type ctxKey string

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json format by default", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer

		log := logger.New(logger.WithOutput(&buf))
		log.Info("hello", "k", "v")

		record := decodeLine(t, &buf)
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "v", record["k"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer

		log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")

		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			logger.New(logger.WithFormat(logger.Format("yaml")))
		})
	})

	t.Run("static attrs on every record", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer

		log := logger.New(logger.WithOutput(&buf),
			logger.WithAttr(logger.Component("session.manager")))
		log.Info("first")

		record := decodeLine(t, &buf)
		assert.Equal(t, "session.manager", record["component"])
	})

	t.Run("level filters", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer

		log := logger.New(logger.WithOutput(&buf))
		log.Debug("invisible")
		assert.Zero(t, buf.Len(), "info default drops debug records")
	})
}

func TestNew_ContextExtraction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf),
		logger.WithContextValue("request_id", ctxKey("request_id")))

	ctx := context.WithValue(context.Background(), ctxKey("request_id"), "req-42")
	log.InfoContext(ctx, "handled")

	record := decodeLine(t, &buf)
	assert.Equal(t, "req-42", record["request_id"])

	// Without the value in context the attribute is absent.
	buf.Reset()
	log.InfoContext(context.Background(), "handled")
	record = decodeLine(t, &buf)
	_, present := record["request_id"]
	assert.False(t, present)
}

func TestPresets(t *testing.T) {
	t.Parallel()

	t.Run("production tags service and env", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer

		log := logger.New(logger.WithOutput(&buf), logger.WithProduction("trackkit"))
		log.Info("up")

		record := decodeLine(t, &buf)
		assert.Equal(t, "trackkit", record["service"])
		assert.Equal(t, "production", record["env"])
	})

	t.Run("development logs debug as text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer

		log := logger.New(logger.WithOutput(&buf), logger.WithDevelopment("trackkit"))
		log.Debug("verbose")

		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("environment string selects a preset", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer

		log := logger.New(logger.WithOutput(&buf),
			logger.WithEnvironment("prod", "trackkit"))
		log.Info("up")

		record := decodeLine(t, &buf)
		assert.Equal(t, "production", record["env"])
	})
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))

	log.Info("event",
		logger.UserID("user-1"),
		logger.SessionID("sess-1"),
		logger.EventType("page_view"),
		logger.Error(errors.New("boom")),
	)

	record := decodeLine(t, &buf)
	assert.Equal(t, "user-1", record["user_id"])
	assert.Equal(t, "sess-1", record["session_id"])
	assert.Equal(t, "page_view", record["event_type"])
	assert.Equal(t, "boom", record["error"])
}

func TestErrorsGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))

	log.Info("multi", logger.Errors(errors.New("first"), nil, errors.New("third")))

	out := buf.String()
	assert.True(t, strings.Contains(out, "first") && strings.Contains(out, "third"))
	assert.NotContains(t, out, "error_1", "nil errors are skipped")
}

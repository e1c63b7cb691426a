package activity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackkit/trackkit/pkg/activity"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current instant and advances by one second, giving every
// event a distinct timestamp.
func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

func setupTracker(t *testing.T) (*activity.Tracker, *tickingClock) {
	t.Helper()
	clock := newTickingClock()
	return activity.NewTracker(activity.NewMemoryStorage(), activity.WithClock(clock.Now)), clock
}

func TestTracker_LogEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns increasing ids", func(t *testing.T) {
		t.Parallel()
		tracker, _ := setupTracker(t)

		var prev int64
		for range 5 {
			id, err := tracker.LogEvent(ctx, "user-1", activity.PageView)
			require.NoError(t, err)
			assert.Greater(t, id, prev)
			prev = id
		}
	})

	t.Run("validates input before storage", func(t *testing.T) {
		t.Parallel()
		tracker, _ := setupTracker(t)

		_, err := tracker.LogEvent(ctx, "", activity.Login)
		assert.ErrorIs(t, err, activity.ErrInvalidUserID)

		_, err = tracker.LogEvent(ctx, "user-1", activity.EventType{})
		assert.ErrorIs(t, err, activity.ErrInvalidEventType)
	})

	t.Run("accepts unrecognized types as custom", func(t *testing.T) {
		t.Parallel()
		tracker, _ := setupTracker(t)

		_, err := tracker.LogEvent(ctx, "user-1", activity.Custom("purchase"))
		require.NoError(t, err)

		events, err := tracker.UserActivities(ctx, "user-1", activity.Filter{})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, activity.KindCustom, events[0].Type.Kind())
		assert.Equal(t, "purchase", events[0].Type.String())
	})

	t.Run("logging against a destroyed session still succeeds", func(t *testing.T) {
		t.Parallel()
		tracker, _ := setupTracker(t)

		// No session with this id exists anywhere; the reference is weak.
		id, err := tracker.LogEvent(ctx, "user-1", activity.Logout,
			activity.WithSession("session-long-gone"))
		require.NoError(t, err)
		assert.Positive(t, id)

		events, err := tracker.UserActivities(ctx, "user-1", activity.Filter{})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "session-long-gone", events[0].SessionID)
	})

	t.Run("payload options compose", func(t *testing.T) {
		t.Parallel()
		tracker, _ := setupTracker(t)

		_, err := tracker.LogEvent(ctx, "user-1", activity.Action,
			activity.WithData("action", "export"),
			activity.WithPayload(map[string]any{"format": "csv", "rows": 42}),
			activity.WithIP("203.0.113.7"),
			activity.WithUserAgent("test-agent/1.0"),
		)
		require.NoError(t, err)

		events, err := tracker.UserActivities(ctx, "user-1", activity.Filter{})
		require.NoError(t, err)
		require.Len(t, events, 1)

		e := events[0]
		assert.Equal(t, "export", e.Data["action"])
		assert.Equal(t, "csv", e.Data["format"])
		assert.Equal(t, 42, e.Data["rows"])
		assert.Equal(t, "203.0.113.7", e.IP)
		assert.Equal(t, "test-agent/1.0", e.UserAgent)
	})
}

func TestTracker_Helpers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tracker, _ := setupTracker(t)

	_, err := tracker.LogLogin(ctx, "user-1", "sid-1", "203.0.113.7")
	require.NoError(t, err)
	_, err = tracker.LogPageView(ctx, "user-1", "/dashboard")
	require.NoError(t, err)
	_, err = tracker.LogAction(ctx, "user-1", "save", map[string]any{"doc": "report"})
	require.NoError(t, err)
	_, err = tracker.LogLogout(ctx, "user-1", "sid-1")
	require.NoError(t, err)

	events, err := tracker.UserActivities(ctx, "user-1", activity.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 4)

	// Newest first.
	assert.Equal(t, activity.Logout, events[0].Type)
	assert.Equal(t, activity.Action, events[1].Type)
	assert.Equal(t, activity.PageView, events[2].Type)
	assert.Equal(t, activity.Login, events[3].Type)

	assert.Equal(t, "/dashboard", events[2].Data["page"])
	assert.Equal(t, "save", events[1].Data["action"])
	assert.Equal(t, "report", events[1].Data["doc"])
}

func TestTracker_UserActivities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("limit returns the N most recent", func(t *testing.T) {
		t.Parallel()
		tracker, _ := setupTracker(t)

		var lastID int64
		for range 10 {
			id, err := tracker.LogPageView(ctx, "user-1", "/p")
			require.NoError(t, err)
			lastID = id
		}

		events, err := tracker.UserActivities(ctx, "user-1", activity.Filter{Limit: 3})
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, lastID, events[0].ID)
		assert.True(t, events[0].Timestamp.After(events[1].Timestamp))
		assert.True(t, events[1].Timestamp.After(events[2].Timestamp))
	})

	t.Run("ties broken by insertion id", func(t *testing.T) {
		t.Parallel()
		storage := activity.NewMemoryStorage()
		fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		tracker := activity.NewTracker(storage, activity.WithClock(func() time.Time { return fixed }))

		for range 5 {
			_, err := tracker.LogPageView(ctx, "user-1", "/p")
			require.NoError(t, err)
		}

		events, err := tracker.UserActivities(ctx, "user-1", activity.Filter{})
		require.NoError(t, err)
		require.Len(t, events, 5)
		for i := 1; i < len(events); i++ {
			assert.Greater(t, events[i-1].ID, events[i].ID)
		}
	})

	t.Run("offset pages through history", func(t *testing.T) {
		t.Parallel()
		tracker, _ := setupTracker(t)

		for range 5 {
			_, err := tracker.LogPageView(ctx, "user-1", "/p")
			require.NoError(t, err)
		}

		page1, err := tracker.UserActivities(ctx, "user-1", activity.Filter{Limit: 2})
		require.NoError(t, err)
		page2, err := tracker.UserActivities(ctx, "user-1", activity.Filter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, page1, 2)
		require.Len(t, page2, 2)
		assert.Greater(t, page1[1].ID, page2[0].ID)

		empty, err := tracker.UserActivities(ctx, "user-1", activity.Filter{Limit: 2, Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("event type filter", func(t *testing.T) {
		t.Parallel()
		tracker, _ := setupTracker(t)

		_, err := tracker.LogLogin(ctx, "user-1", "sid-1", "")
		require.NoError(t, err)
		_, err = tracker.LogPageView(ctx, "user-1", "/a")
		require.NoError(t, err)
		_, err = tracker.LogPageView(ctx, "user-1", "/b")
		require.NoError(t, err)

		views, err := tracker.UserActivities(ctx, "user-1", activity.Filter{Type: activity.PageView})
		require.NoError(t, err)
		require.Len(t, views, 2)
		for _, e := range views {
			assert.Equal(t, activity.PageView, e.Type)
		}
	})

	t.Run("users are isolated", func(t *testing.T) {
		t.Parallel()
		tracker, _ := setupTracker(t)

		_, err := tracker.LogPageView(ctx, "user-1", "/a")
		require.NoError(t, err)
		_, err = tracker.LogPageView(ctx, "user-2", "/b")
		require.NoError(t, err)

		events, err := tracker.UserActivities(ctx, "user-1", activity.Filter{})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "user-1", events[0].UserID)
	})
}

func TestTracker_ActivitiesInWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tracker, clock := setupTracker(t)

	start := clock.Now() // consumes one tick
	for range 5 {
		_, err := tracker.LogPageView(ctx, "user-1", "/p")
		require.NoError(t, err)
	}
	end := clock.Now()
	_, err := tracker.LogPageView(ctx, "user-1", "/after")
	require.NoError(t, err)

	events, err := tracker.ActivitiesInWindow(ctx, start, end)
	require.NoError(t, err)
	assert.Len(t, events, 5, "only events inside the window")
}

func TestTracker_CountForUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tracker, _ := setupTracker(t)

	_, err := tracker.LogLogin(ctx, "user-1", "sid", "")
	require.NoError(t, err)
	for range 3 {
		_, err := tracker.LogPageView(ctx, "user-1", "/p")
		require.NoError(t, err)
	}

	total, err := tracker.CountForUser(ctx, "user-1", activity.EventType{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	views, err := tracker.CountForUser(ctx, "user-1", activity.PageView)
	require.NoError(t, err)
	assert.EqualValues(t, 3, views)
}

func TestTracker_DeleteOlderThan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tracker, clock := setupTracker(t)

	for range 3 {
		_, err := tracker.LogPageView(ctx, "user-1", "/old")
		require.NoError(t, err)
	}
	cutoff := clock.Now()
	for range 2 {
		_, err := tracker.LogPageView(ctx, "user-1", "/new")
		require.NoError(t, err)
	}

	n, err := tracker.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	remaining, err := tracker.UserActivities(ctx, "user-1", activity.Filter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	// Idempotent: nothing older remains.
	n, err = tracker.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Zero(t, n)
}

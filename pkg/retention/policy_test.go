package retention_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackkit/trackkit/pkg/activity"
	"github.com/trackkit/trackkit/pkg/retention"
	"github.com/trackkit/trackkit/pkg/session"
)

var retentionNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupPolicy(t *testing.T, days int) (*retention.Policy, *session.MemoryStore, *activity.MemoryStorage) {
	t.Helper()

	sessions := session.NewMemoryStore()
	activities := activity.NewMemoryStorage()
	policy, err := retention.NewPolicy(sessions, activities,
		retention.WithRetentionDays(days),
		retention.WithClock(func() time.Time { return retentionNow }))
	require.NoError(t, err)
	return policy, sessions, activities
}

func seedAt(t *testing.T, sessions *session.MemoryStore, activities *activity.MemoryStorage, id string, at time.Time) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, sessions.Insert(ctx, &session.Session{
		ID:             id,
		UserID:         "user-1",
		CreatedAt:      at,
		LastActivityAt: at,
		ExpiresAt:      at.Add(time.Hour),
	}, at))
	_, err := activities.Insert(ctx, &activity.Event{
		UserID:    "user-1",
		SessionID: id,
		Type:      activity.PageView,
		Timestamp: at,
	})
	require.NoError(t, err)
}

func TestNewPolicy(t *testing.T) {
	t.Parallel()

	_, err := retention.NewPolicy(session.NewMemoryStore(), activity.NewMemoryStorage(),
		retention.WithRetentionDays(0))
	assert.ErrorIs(t, err, retention.ErrInvalidRetention)

	_, err = retention.NewPolicy(session.NewMemoryStore(), activity.NewMemoryStorage(),
		retention.WithConfig(retention.Config{RetentionDays: 30, Interval: -time.Hour}))
	assert.ErrorIs(t, err, retention.ErrInvalidRetention)
}

func TestPolicy_Apply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes only data outside the window", func(t *testing.T) {
		t.Parallel()
		policy, sessions, activities := setupPolicy(t, 90)

		seedAt(t, sessions, activities, "old-1", retentionNow.AddDate(0, 0, -120))
		seedAt(t, sessions, activities, "old-2", retentionNow.AddDate(0, 0, -91))
		seedAt(t, sessions, activities, "fresh", retentionNow.AddDate(0, 0, -30))

		summary, err := policy.Apply(ctx)
		require.NoError(t, err)

		assert.EqualValues(t, 2, summary.ActivitiesDeleted)
		assert.EqualValues(t, 2, summary.SessionsDeleted)
		assert.Equal(t, 90, summary.RetentionDays)
		assert.Equal(t, retentionNow, summary.AppliedAt)

		remaining, err := sessions.ListByUser(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "fresh", remaining[0].ID)

		events, err := activities.ListAllByUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("sessions go by creation time, not expiry", func(t *testing.T) {
		t.Parallel()
		policy, sessions, activities := setupPolicy(t, 90)

		// Created long ago but somehow still unexpired: retention removes it.
		old := retentionNow.AddDate(0, 0, -120)
		require.NoError(t, sessions.Insert(ctx, &session.Session{
			ID:             "long-lived",
			UserID:         "user-1",
			CreatedAt:      old,
			LastActivityAt: retentionNow,
			ExpiresAt:      retentionNow.Add(time.Hour),
		}, old))
		_ = activities

		n, err := policy.DeleteOldSessions(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("nothing to delete yields zero counts", func(t *testing.T) {
		t.Parallel()
		policy, sessions, activities := setupPolicy(t, 90)
		seedAt(t, sessions, activities, "fresh", retentionNow.AddDate(0, 0, -1))

		summary, err := policy.Apply(ctx)
		require.NoError(t, err)
		assert.Zero(t, summary.ActivitiesDeleted)
		assert.Zero(t, summary.SessionsDeleted)
	})
}

type failingActivityPruner struct{}

func (failingActivityPruner) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errors.Join(activity.ErrStorageUnavailable, errors.New("down"))
}

func TestPolicy_ApplySurfacesErrors(t *testing.T) {
	t.Parallel()

	policy, err := retention.NewPolicy(session.NewMemoryStore(), failingActivityPruner{},
		retention.WithRetentionDays(90))
	require.NoError(t, err)

	_, err = policy.Apply(context.Background())
	assert.ErrorIs(t, err, activity.ErrStorageUnavailable)
}

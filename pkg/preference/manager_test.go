package preference_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackkit/trackkit/pkg/preference"
)

func TestManager_Get(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown user sees defaults", func(t *testing.T) {
		t.Parallel()
		mgr := preference.NewManager(preference.NewMemoryStore())

		prefs, err := mgr.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "light", prefs["theme"])
		assert.Equal(t, "en", prefs["language"])

		notifications, ok := prefs["notifications"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, notifications["email"])
		assert.Equal(t, false, notifications["push"])

		privacy, ok := prefs["privacy"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, false, privacy["profile_public"])
		assert.Equal(t, true, privacy["allow_analytics"])
	})

	t.Run("default copies are independent", func(t *testing.T) {
		t.Parallel()
		mgr := preference.NewManager(preference.NewMemoryStore())

		prefs, err := mgr.Get(ctx, "user-1")
		require.NoError(t, err)
		prefs["theme"] = "dark"

		again, err := mgr.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "light", again["theme"], "mutating a returned document must not leak")
	})

	t.Run("empty user rejected", func(t *testing.T) {
		t.Parallel()
		mgr := preference.NewManager(preference.NewMemoryStore())

		_, err := mgr.Get(ctx, "")
		assert.ErrorIs(t, err, preference.ErrInvalidUserID)
	})
}

func TestManager_SetAndUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("set replaces the whole document", func(t *testing.T) {
		t.Parallel()
		mgr := preference.NewManager(preference.NewMemoryStore())

		require.NoError(t, mgr.Set(ctx, "user-1", preference.Preferences{"theme": "dark"}))

		prefs, err := mgr.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "dark", prefs["theme"])
		_, hasLanguage := prefs["language"]
		assert.False(t, hasLanguage, "replaced documents do not keep defaults")
	})

	t.Run("update key preserves the rest", func(t *testing.T) {
		t.Parallel()
		mgr := preference.NewManager(preference.NewMemoryStore())

		require.NoError(t, mgr.UpdateKey(ctx, "user-1", "theme", "dark"))

		prefs, err := mgr.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "dark", prefs["theme"])
		assert.Equal(t, "en", prefs["language"], "untouched defaults survive the key update")

		v, ok, err := mgr.GetKey(ctx, "user-1", "theme")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "dark", v)
	})

	t.Run("get key reports absence", func(t *testing.T) {
		t.Parallel()
		mgr := preference.NewManager(preference.NewMemoryStore())

		_, ok, err := mgr.GetKey(ctx, "user-1", "no_such_key")
		require.NoError(t, err)
		assert.False(t, ok)

		_, _, err = mgr.GetKey(ctx, "user-1", "")
		assert.ErrorIs(t, err, preference.ErrInvalidKey)
	})
}

func TestManager_ResetAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reset restores defaults", func(t *testing.T) {
		t.Parallel()
		mgr := preference.NewManager(preference.NewMemoryStore())

		require.NoError(t, mgr.UpdateKey(ctx, "user-1", "theme", "dark"))
		require.NoError(t, mgr.Reset(ctx, "user-1"))

		prefs, err := mgr.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "light", prefs["theme"])
	})

	t.Run("delete reverts to defaults and is idempotent", func(t *testing.T) {
		t.Parallel()
		mgr := preference.NewManager(preference.NewMemoryStore())

		require.NoError(t, mgr.UpdateKey(ctx, "user-1", "theme", "dark"))

		deleted, err := mgr.Delete(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, deleted)

		prefs, err := mgr.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "light", prefs["theme"])

		deleted, err = mgr.Delete(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestManager_ClockStampsWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := preference.NewMemoryStore()
	mgr := preference.NewManager(store, preference.WithClock(func() time.Time { return fixed }))

	require.NoError(t, mgr.Set(ctx, "user-1", preference.Preferences{"theme": "dark"}))

	updatedAt, ok := store.UpdatedAt("user-1")
	require.True(t, ok)
	assert.Equal(t, fixed, updatedAt)
}

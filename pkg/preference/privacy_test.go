package preference_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackkit/trackkit/pkg/preference"
)

func setupPrivacy(t *testing.T) (*preference.Privacy, *preference.Manager) {
	t.Helper()
	mgr := preference.NewManager(preference.NewMemoryStore())
	return preference.NewPrivacy(mgr), mgr
}

func TestPrivacy_Settings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	priv, _ := setupPrivacy(t)

	settings, err := priv.Settings(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, false, settings["profile_public"])
	assert.Equal(t, true, settings["show_activity"])
	assert.Equal(t, true, settings["allow_analytics"])
}

func TestPrivacy_Setters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("toggles land in the privacy section", func(t *testing.T) {
		t.Parallel()
		priv, _ := setupPrivacy(t)

		require.NoError(t, priv.SetProfileVisibility(ctx, "user-1", true))
		require.NoError(t, priv.SetActivityVisibility(ctx, "user-1", false))
		require.NoError(t, priv.SetAnalyticsConsent(ctx, "user-1", false))

		settings, err := priv.Settings(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, true, settings["profile_public"])
		assert.Equal(t, false, settings["show_activity"])
		assert.Equal(t, false, settings["allow_analytics"])
	})

	t.Run("rebuilds a missing privacy section", func(t *testing.T) {
		t.Parallel()
		priv, mgr := setupPrivacy(t)

		// A full document replace can drop the section entirely.
		require.NoError(t, mgr.Set(ctx, "user-1", preference.Preferences{"theme": "dark"}))

		require.NoError(t, priv.SetProfileVisibility(ctx, "user-1", true))

		settings, err := priv.Settings(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, true, settings["profile_public"])

		prefs, err := mgr.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "dark", prefs["theme"], "other keys survive")
	})

	t.Run("other preference keys survive a toggle", func(t *testing.T) {
		t.Parallel()
		priv, mgr := setupPrivacy(t)

		require.NoError(t, mgr.UpdateKey(ctx, "user-1", "theme", "dark"))
		require.NoError(t, priv.SetAnalyticsConsent(ctx, "user-1", false))

		prefs, err := mgr.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "dark", prefs["theme"])
	})
}

func TestPrivacy_AllowsAnalytics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	priv, _ := setupPrivacy(t)

	allowed, err := priv.AllowsAnalytics(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, allowed, "default is opted in")

	require.NoError(t, priv.SetAnalyticsConsent(ctx, "user-1", false))

	allowed, err = priv.AllowsAnalytics(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAnonymizeIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ipv4 final octet zeroed", "192.168.1.42", "192.168.1.0"},
		{"already zero", "10.0.0.0", "10.0.0.0"},
		{"ipv6 passes through", "2001:db8::1", "2001:db8::1"},
		{"garbage passes through", "not-an-ip", "not-an-ip"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, preference.AnonymizeIP(tt.in))
		})
	}
}

package activity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackkit/trackkit/pkg/activity"
)

func TestParseEventType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		wantKind activity.Kind
		wantStr  string
	}{
		{"login", activity.KindLogin, "login"},
		{"logout", activity.KindLogout, "logout"},
		{"page_view", activity.KindPageView, "page_view"},
		{"action", activity.KindAction, "action"},
		{"purchase", activity.KindCustom, "purchase"},
		{"button_click", activity.KindCustom, "button_click"},
		{"", activity.KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run("parse "+tt.in, func(t *testing.T) {
			t.Parallel()

			et := activity.ParseEventType(tt.in)
			assert.Equal(t, tt.wantKind, et.Kind())
			assert.Equal(t, tt.wantStr, et.String())
		})
	}
}

func TestEventType_CustomCanonicalizes(t *testing.T) {
	t.Parallel()

	// A known type string entering through the custom path still yields
	// the known case.
	assert.Equal(t, activity.Login, activity.Custom("login"))
	assert.Equal(t, activity.KindCustom, activity.Custom("export_csv").Kind())

	// Equal literals compare equal, so custom types work as filters.
	assert.Equal(t, activity.Custom("purchase"), activity.Custom("purchase"))
	assert.NotEqual(t, activity.Custom("purchase"), activity.Custom("refund"))
}

func TestEventType_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	for _, et := range []activity.EventType{activity.Login, activity.Custom("purchase")} {
		b, err := json.Marshal(et)
		require.NoError(t, err)

		var back activity.EventType
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, et, back)
	}
}

package preference

// Preferences is one user's preference document. Nested values (notification
// channels, privacy settings) are plain maps so unknown keys written by other
// services round-trip untouched.
type Preferences map[string]any

// Defaults returns the preference document applied to users who have never
// written preferences. Callers receive a fresh copy and may mutate it freely.
func Defaults() Preferences {
	return Preferences{
		"theme":    "light",
		"language": "en",
		"notifications": map[string]any{
			"email": true,
			"push":  false,
			"sms":   false,
		},
		"privacy": map[string]any{
			"profile_public":  false,
			"show_activity":   true,
			"allow_analytics": true,
		},
	}
}

// Clone deep-copies the document one nesting level down, which covers the
// default shape. Deeper values are shared.
func (p Preferences) Clone() Preferences {
	if p == nil {
		return nil
	}
	out := make(Preferences, len(p))
	for k, v := range p {
		if nested, ok := v.(map[string]any); ok {
			inner := make(map[string]any, len(nested))
			for nk, nv := range nested {
				inner[nk] = nv
			}
			out[k] = inner
			continue
		}
		out[k] = v
	}
	return out
}

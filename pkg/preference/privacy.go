package preference

import (
	"context"
	"strings"
)

// Privacy keys inside the "privacy" section of the document.
const (
	privacySection    = "privacy"
	keyProfilePublic  = "profile_public"
	keyShowActivity   = "show_activity"
	keyAllowAnalytics = "allow_analytics"
)

// Privacy exposes the privacy section of a user's preferences as first-class
// operations, so callers do not reach into the document shape.
type Privacy struct {
	manager *Manager
}

// NewPrivacy wraps a Manager. Panics on nil manager.
func NewPrivacy(manager *Manager) *Privacy {
	if manager == nil {
		panic("preference: manager cannot be nil")
	}
	return &Privacy{manager: manager}
}

// SetProfileVisibility marks the user's profile public or private.
func (p *Privacy) SetProfileVisibility(ctx context.Context, userID string, public bool) error {
	return p.setPrivacyKey(ctx, userID, keyProfilePublic, public)
}

// SetActivityVisibility controls whether the user's activity is shown.
func (p *Privacy) SetActivityVisibility(ctx context.Context, userID string, visible bool) error {
	return p.setPrivacyKey(ctx, userID, keyShowActivity, visible)
}

// SetAnalyticsConsent records the user's analytics opt-in inside the
// preference document. Formal consent records live in pkg/consent; this flag
// is the product-facing toggle.
func (p *Privacy) SetAnalyticsConsent(ctx context.Context, userID string, allow bool) error {
	return p.setPrivacyKey(ctx, userID, keyAllowAnalytics, allow)
}

// Settings returns the privacy section of the user's document. Users without
// stored preferences see the default privacy settings.
func (p *Privacy) Settings(ctx context.Context, userID string) (map[string]any, error) {
	prefs, err := p.manager.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if section, ok := prefs[privacySection].(map[string]any); ok {
		return section, nil
	}
	return map[string]any{}, nil
}

// AllowsAnalytics reports whether the user permits analytics processing.
// Absent settings fall back to the default (allowed).
func (p *Privacy) AllowsAnalytics(ctx context.Context, userID string) (bool, error) {
	settings, err := p.Settings(ctx, userID)
	if err != nil {
		return false, err
	}
	if v, ok := settings[keyAllowAnalytics].(bool); ok {
		return v, nil
	}
	return true, nil
}

func (p *Privacy) setPrivacyKey(ctx context.Context, userID, key string, value bool) error {
	prefs, err := p.manager.Get(ctx, userID)
	if err != nil {
		return err
	}

	section, ok := prefs[privacySection].(map[string]any)
	if !ok {
		section = make(map[string]any)
		prefs[privacySection] = section
	}
	section[key] = value

	return p.manager.Set(ctx, userID, prefs)
}

// AnonymizeIP masks an IPv4 address by zeroing its final octet. Other
// formats, IPv6 included, pass through unchanged; empty input stays empty.
func AnonymizeIP(ip string) string {
	if ip == "" {
		return ""
	}
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ip
	}
	parts[3] = "0"
	return strings.Join(parts, ".")
}

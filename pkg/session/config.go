package session

import "time"

// Config holds session lifecycle configuration.
type Config struct {
	// TTL is the sliding expiration window. Every successful validation
	// re-extends the session expiry by this duration.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`

	// CleanupInterval is the cadence for the expired-session sweep run by
	// Manager.RunCleanup (0 disables the loop).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		TTL:             time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}

// Validate rejects configurations that would produce sessions that are
// expired on arrival.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

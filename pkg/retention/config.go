package retention

import "time"

// Config holds retention configuration.
type Config struct {
	// RetentionDays is how long activities and sessions are kept.
	RetentionDays int `env:"RETENTION_DAYS" envDefault:"365"`

	// Interval is how often Run applies the policy.
	Interval time.Duration `env:"RETENTION_INTERVAL" envDefault:"24h"`
}

// DefaultConfig returns the configuration used when none is provided.
func DefaultConfig() Config {
	return Config{
		RetentionDays: 365,
		Interval:      24 * time.Hour,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.RetentionDays <= 0 {
		return ErrInvalidRetention
	}
	if c.Interval <= 0 {
		return ErrInvalidRetention
	}
	return nil
}

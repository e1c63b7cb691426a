package activity

import "time"

// Config holds activity log configuration.
type Config struct {
	// AsyncBufferSize is the event queue capacity for the async writer
	// (0 disables async batching).
	AsyncBufferSize int `env:"ACTIVITY_ASYNC_BUFFER_SIZE" envDefault:"0"`

	// BatchSize is the target events per storage batch.
	BatchSize int `env:"ACTIVITY_BATCH_SIZE" envDefault:"100"`

	// BatchTimeout bounds how long a partial batch waits before flushing.
	BatchTimeout time.Duration `env:"ACTIVITY_BATCH_TIMEOUT" envDefault:"100ms"`

	// StorageTimeout bounds each batch write so a broken backend cannot
	// stall the writer.
	StorageTimeout time.Duration `env:"ACTIVITY_STORAGE_TIMEOUT" envDefault:"5s"`
}

// AsyncOptions converts the configuration into async writer options.
func (c Config) AsyncOptions() AsyncOptions {
	return AsyncOptions{
		BufferSize:     c.AsyncBufferSize,
		BatchSize:      c.BatchSize,
		BatchTimeout:   c.BatchTimeout,
		StorageTimeout: c.StorageTimeout,
	}
}

package engine

import (
	"errors"
	"time"
)

const DefaultFlushInterval = 500 * time.Millisecond

// Config holds the immutable construction-time options of an Engine.
type Config struct {
	// FlushInterval is the auto-flush cadence. The timer is best-effort:
	// the interval is a target, not a real-time guarantee.
	FlushInterval time.Duration

	// BatchSize caps the number of items handed to the handler per
	// invocation. Zero means a single invocation receives everything
	// drained.
	BatchSize int

	// OnError receives handler failures. When nil, failures are logged
	// at error level. The observer never affects control flow: a failed
	// chunk does not stop later chunks or later flushes.
	OnError func(error)
}

func (c *Config) Default() {
	c.FlushInterval = DefaultFlushInterval
	c.BatchSize = 0
}

func (c *Config) Validate() error {
	if c.FlushInterval <= 0 {
		return errors.New("flush interval must be positive")
	}
	if c.BatchSize < 0 {
		return errors.New("batch size must not be negative")
	}
	return nil
}

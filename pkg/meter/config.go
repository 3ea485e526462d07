// ABOUTME: Pipeline tunables
// ABOUTME: Image size, bucket count, decay and render intervals
package meter

import (
	"fmt"
	"time"

	"github.com/micmon/micmon-go/pkg/history"
	"github.com/micmon/micmon-go/pkg/render"
)

// Config holds the pipeline tunables
type Config struct {
	// Size is the icon side length in pixels (default: 32)
	Size int

	// Buckets is the history length (default: 5)
	Buckets int

	// Decay is the time each bucket spends at the front (default: 1500ms)
	Decay time.Duration

	// MinInterval is the minimum spacing between rendered frames
	// (default: Decay/2)
	MinInterval time.Duration
}

// DefaultConfig returns the reference configuration
func DefaultConfig() Config {
	return Config{
		Size:        render.DefaultSize,
		Buckets:     history.DefaultBuckets,
		Decay:       history.DefaultDecay,
		MinInterval: history.DefaultDecay / 2,
	}
}

// withDefaults fills zero fields
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Size == 0 {
		c.Size = d.Size
	}
	if c.Buckets == 0 {
		c.Buckets = d.Buckets
	}
	if c.Decay == 0 {
		c.Decay = d.Decay
	}
	if c.MinInterval == 0 {
		c.MinInterval = c.Decay / 2
	}
	return c
}

// Validate checks the config after defaults are applied
func (c Config) Validate() error {
	c = c.withDefaults()
	if err := render.Validate(c.Size, c.Buckets); err != nil {
		return err
	}
	if c.Decay < 0 {
		return fmt.Errorf("decay must be positive, got %v", c.Decay)
	}
	if c.MinInterval < 0 {
		return fmt.Errorf("min interval must not be negative, got %v", c.MinInterval)
	}
	return nil
}

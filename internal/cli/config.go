package cli

import (
	"errors"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jculverhouse/fibonacci-race/internal/harness"
	"github.com/jculverhouse/fibonacci-race/internal/memo"
)

// ErrConfig is wrapped by every configuration validation error.
var ErrConfig = errors.New("invalid configuration")

// Config holds the settings taken from flags.
type Config struct {
	// Capacity is the number of results each shared cache keeps.
	Capacity int
	// Passes is how many times every strategy is timed.
	Passes int
	// LogLevel is a logrus level name.
	LogLevel string
}

// DefaultConfig returns the settings used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Capacity: memo.DefaultCapacity,
		Passes:   harness.DefaultPasses,
		LogLevel: "warn",
	}
}

// RegisterFlags binds c to flags in fs, keeping the current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Capacity, "capacity", c.Capacity, "entries kept by each shared cache")
	fs.IntVar(&c.Passes, "passes", c.Passes, "number of timing passes")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (trace, debug, info, warn, error)")
}

// Validate checks c and returns an error wrapping ErrConfig if it is unusable.
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1, got %d", ErrConfig, c.Capacity)
	}
	if c.Passes < 1 {
		return fmt.Errorf("%w: passes must be at least 1, got %d", ErrConfig, c.Passes)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}

// Fields returns c as log fields.
func (c Config) Fields() logrus.Fields {
	return logrus.Fields{
		"capacity":  c.Capacity,
		"passes":    c.Passes,
		"log_level": c.LogLevel,
	}
}

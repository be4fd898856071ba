// Package config defines daemon configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and the environment over those defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the status HTTP listen address, e.g. ":9090".
	// Empty disables the status server.
	Addr string `koanf:"addr"`

	// Device is the evdev node to read, e.g. "/dev/input/event5".
	// Empty means discover the first multitouch device.
	Device string `koanf:"device"`

	// Grab requests exclusive access to the device.
	Grab bool `koanf:"grab"`

	// RulesPath points at the gesture rule file.
	RulesPath string `koanf:"rules_path"`

	// CalibrationPath points at the persisted screen bounds.
	CalibrationPath string `koanf:"calibration_path"`

	// MinEdgeDistance is the travel a border swipe needs, in device units.
	MinEdgeDistance float64 `koanf:"min_edge_distance"`

	// CalibrationSamples is the number of swipes recorded per edge.
	CalibrationSamples int `koanf:"calibration_samples"`

	// ActionQueueSize bounds the in-memory action queue.
	ActionQueueSize int `koanf:"action_queue_size"`

	// ActionWorkers sets the number of action executors.
	ActionWorkers int `koanf:"action_workers"`

	// ActionTimeoutMS caps the run time of one action command.
	ActionTimeoutMS int `koanf:"action_timeout_ms"`

	// Shell runs action commands as `<shell> -c <command>`.
	Shell string `koanf:"shell"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               "",
		RulesPath:          "/etc/touchgest/gestures.conf",
		CalibrationPath:    "/var/lib/touchgest/dims",
		MinEdgeDistance:    10,
		CalibrationSamples: 5,
		ActionQueueSize:    64,
		ActionWorkers:      2,
		ActionTimeoutMS:    10_000,
		Shell:              "/bin/sh",
	}
}

// ActionTimeout returns ActionTimeoutMS as a duration.
func (c *Config) ActionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.RulesPath == "":
		return fmt.Errorf("%w: rules_path must not be empty", ErrInvalidConfig)
	case c.CalibrationPath == "":
		return fmt.Errorf("%w: calibration_path must not be empty", ErrInvalidConfig)
	case c.MinEdgeDistance < 0:
		return fmt.Errorf("%w: min_edge_distance must not be negative", ErrInvalidConfig)
	case c.CalibrationSamples <= 0:
		return fmt.Errorf("%w: calibration_samples must be positive", ErrInvalidConfig)
	case c.ActionQueueSize <= 0:
		return fmt.Errorf("%w: action_queue_size must be positive", ErrInvalidConfig)
	case c.ActionWorkers <= 0:
		return fmt.Errorf("%w: action_workers must be positive", ErrInvalidConfig)
	case c.ActionTimeoutMS <= 0:
		return fmt.Errorf("%w: action_timeout_ms must be positive", ErrInvalidConfig)
	case c.Shell == "":
		return fmt.Errorf("%w: shell must not be empty", ErrInvalidConfig)
	}
	return nil
}

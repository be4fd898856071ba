package device

import (
	"time"

	"github.com/okian/touchgest/pkg/logger"
)

// Option configures an evdev source.
type Option func(*settings)

type settings struct {
	grab         bool
	pollInterval time.Duration
	logger       logger.Logger
}

func defaultSettings() settings {
	return settings{
		pollInterval: 100 * time.Millisecond,
		logger:       logger.Get().Named("device"),
	}
}

// WithGrab requests exclusive access to the device so other readers stop
// receiving its events.
func WithGrab(grab bool) Option {
	return func(s *settings) { s.grab = grab }
}

// WithPollInterval bounds how long Next waits before rechecking its context.
func WithPollInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

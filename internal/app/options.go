package service

import (
	"context"

	"github.com/okian/touchgest/internal/adapters/mq/worker"
	"github.com/okian/touchgest/internal/domain/model"
	"github.com/okian/touchgest/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// Recognition is one classified gesture and the command it mapped to.
type Recognition struct {
	Gesture  model.Gesture
	Command  string
	Matched  bool
	Duration uint32 // milliseconds between touch down and last motion of the longest contact
}

// GestureHandler observes every recognized gesture after it was dispatched.
type GestureHandler func(ctx context.Context, r Recognition)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithActionQueue sends matched commands to q. Without a queue matched
// commands are only logged.
func WithActionQueue(q ActionQueue) Option {
	return func(s *Service) {
		s.actions = q
	}
}

// WithPool reports the outcome counters and size of the executor pool in
// the stats snapshot.
func WithPool(p *worker.Pool) Option {
	return func(s *Service) {
		if p != nil {
			s.counters = p.Counters()
			s.workers = p.Size()
		}
	}
}

// WithMinEdgeDistance sets the minimum travel of a border swipe.
func WithMinEdgeDistance(d float64) Option {
	return func(s *Service) {
		if d >= 0 {
			s.minEdgeDistance = d
		}
	}
}

// WithCalibrationSamples sets the number of swipes collected per edge.
func WithCalibrationSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.samples = n
		}
	}
}

// WithDeviceName labels the source in logs and stats.
func WithDeviceName(name string) Option {
	return func(s *Service) {
		s.device = name
	}
}

// WithGestureHandler registers h to observe recognized gestures.
func WithGestureHandler(h GestureHandler) Option {
	return func(s *Service) {
		s.onGesture = h
	}
}

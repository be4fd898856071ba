//go:build !linux

package device

import (
	"context"

	"github.com/okian/touchgest/internal/domain/model"
)

// Evdev is unavailable on this platform.
type Evdev struct{}

// Open always fails with ErrUnsupported.
func Open(path string, _ ...Option) (*Evdev, error) {
	return nil, ErrUnsupported
}

// Path returns an empty string.
func (e *Evdev) Path() string { return "" }

// Flush always fails with ErrUnsupported.
func (e *Evdev) Flush() error { return ErrUnsupported }

// Next always fails with ErrUnsupported.
func (e *Evdev) Next(context.Context) ([]model.TouchEvent, error) { return nil, ErrUnsupported }

// Close does nothing.
func (e *Evdev) Close() error { return nil }

// Discover always fails with ErrUnsupported.
func Discover(context.Context) (string, error) {
	return "", ErrUnsupported
}

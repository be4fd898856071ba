package device

import "errors"

// Sentinel kinds for device errors.
var (
	ErrNoDevice      = errors.New("no multitouch device found")
	ErrNotMultitouch = errors.New("device does not report multitouch slots")
	ErrUnsupported   = errors.New("evdev input is only supported on linux")
	ErrInvalidScript = errors.New("invalid event script")
	ErrClosed        = errors.New("source closed")
)

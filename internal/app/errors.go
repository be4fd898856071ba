package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrAlreadyRunning = errors.New("service already running")
	ErrSource         = errors.New("touch source failed")
	ErrTracker        = errors.New("touch event rejected")
)

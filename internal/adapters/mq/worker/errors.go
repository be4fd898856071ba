package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrTimeout      = errors.New("action timed out")
	ErrEmptyCommand = errors.New("empty action command")
)

package repository

import "errors"

// Sentinel kinds for configuration file errors.
var (
	ErrNotFound      = errors.New("file not found")
	ErrMalformed     = errors.New("malformed file")
	ErrInvalidBounds = errors.New("invalid screen bounds")
)

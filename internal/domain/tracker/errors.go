package tracker

import "errors"

// Sentinel kinds for tracker errors.
var (
	ErrSlotOutOfRange = errors.New("slot out of range")
	ErrUnknownEvent   = errors.New("unknown touch event kind")
)

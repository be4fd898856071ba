package device

// Linux input event types and codes used by the multitouch protocol B.
const (
	evSyn = 0x00
	evAbs = 0x03

	synReport  = 0x00
	synDropped = 0x03

	absMTSlot       = 0x2f
	absMTPositionX  = 0x35
	absMTPositionY  = 0x36
	absMTTrackingID = 0x39
	absMax          = 0x3f
)

// RawEvent is one decoded input_event record.
type RawEvent struct {
	// Time is the event timestamp in milliseconds, truncated to 32 bits.
	Time  uint32
	Type  uint16
	Code  uint16
	Value int32
}

// millis converts a timeval to the millisecond clock used by touch events.
func millis(sec, usec int64) uint32 {
	return uint32(sec*1000 + usec/1000) //nolint:gosec // wraparound is part of the clock
}

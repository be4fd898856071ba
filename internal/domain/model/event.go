// Package model contains domain models passed between layers.
package model

// SlotCapacity is the number of simultaneous contacts tracked.
const SlotCapacity = 10

// Point is a position in device coordinates. The origin is the upper left
// corner of the panel; Y grows downwards.
type Point struct {
	X float64
	Y float64
}

// EventKind tags a normalized touch event.
type EventKind uint8

// Touch event kinds.
const (
	EventDown EventKind = iota
	EventMotion
	EventUp
	EventCancel
)

// String returns the lower-case name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventDown:
		return "down"
	case EventMotion:
		return "motion"
	case EventUp:
		return "up"
	case EventCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// TouchEvent is a single normalized contact update produced by a device adapter.
type TouchEvent struct {
	Kind     EventKind // down, motion, up or cancel
	Slot     int       // contact slot, 0..SlotCapacity-1
	Position Point     // meaningful for down and motion only
	Time     uint32    // device clock in milliseconds, wraps
}

// SlotState is the trajectory of one contact slot.
type SlotState struct {
	Start      Point
	StartTime  uint32
	Latest     Point
	LatestTime uint32
	Down       bool
	Ready      bool
}

// Duration returns the elapsed device time between touch down and the latest
// update. Clock wraparound is handled by unsigned subtraction.
func (s SlotState) Duration() uint32 {
	return s.LatestTime - s.StartTime
}

// Bounds is the calibrated usable rectangle of the panel.
type Bounds struct {
	Min Point
	Max Point
}

// Valid reports whether the rectangle has a positive extent on both axes.
func (b Bounds) Valid() bool {
	return b.Min.X < b.Max.X && b.Min.Y < b.Max.Y
}

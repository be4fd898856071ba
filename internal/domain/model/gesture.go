package model

import "strconv"

// GestureType classifies a completed contact cycle.
type GestureType uint8

// Gesture types.
const (
	GestureNone GestureType = iota
	GestureTap
	GestureMovement
	GestureBorder
)

// String returns the rule-file keyword for the type.
func (t GestureType) String() string {
	switch t {
	case GestureTap:
		return "TAP"
	case GestureMovement:
		return "MOVEMENT"
	case GestureBorder:
		return "BORDER"
	default:
		return "NONE"
	}
}

// Direction is a movement direction or, for border gestures, the edge the
// contact started on.
type Direction uint8

// Directions. Up and Down refer to the screen, so Up is towards smaller Y.
const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionRight
	DirectionDown
	DirectionLeft
)

// String returns a lower-case name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionRight:
		return "right"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	default:
		return "none"
	}
}

// Gesture is the result of one classification cycle.
type Gesture struct {
	Type      GestureType
	Direction Direction
	Fingers   uint8
}

// String formats the gesture as "TYPE direction fingers".
func (g Gesture) String() string {
	return g.Type.String() + " " + g.Direction.String() + " " + strconv.Itoa(int(g.Fingers))
}

// Rule maps a gesture key to an action command.
type Rule struct {
	Key    Gesture
	Action string
}

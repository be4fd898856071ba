// Package classifier turns the contacts completed in one cycle into a gesture.
package classifier

import (
	"github.com/okian/touchgest/internal/domain/geometry"
	"github.com/okian/touchgest/internal/domain/model"
	"github.com/okian/touchgest/internal/domain/tracker"
)

// DefaultMinEdgeDistance is the minimum travel of a border swipe, in device
// units (millimetres for the evdev adapter).
const DefaultMinEdgeDistance = 10.0

// directionCount is the number of direction buckets including none.
const directionCount = int(model.DirectionLeft) + 1

// Classifier decides tap, movement or border for a set of completed contacts.
type Classifier struct {
	bounds          model.Bounds
	minEdgeDistance float64
}

// New creates a classifier with configuration options.
func New(opts ...Option) *Classifier {
	c := &Classifier{minEdgeDistance: DefaultMinEdgeDistance}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bounds returns the screen rectangle used for border detection.
func (c *Classifier) Bounds() model.Bounds { return c.bounds }

// Classify returns the gesture for the contacts drained in one cycle. The
// boolean is false when ready is empty, meaning the cycle was idle. Every
// contact counts towards the finger number whether or not it agrees with the
// winning direction.
func (c *Classifier) Classify(ready []tracker.Ready) (model.Gesture, bool) {
	if len(ready) == 0 {
		return model.Gesture{}, false
	}

	g := model.Gesture{
		Fingers:   uint8(len(ready)), //nolint:gosec // bounded by model.SlotCapacity
		Direction: vote(ready),
	}

	switch {
	case g.Direction == model.DirectionNone:
		g.Type = model.GestureTap
	case len(ready) > 1:
		g.Type = model.GestureMovement
	default:
		g.Type = model.GestureMovement
		if edge := c.border(ready[0].State); edge != model.DirectionNone {
			g.Type = model.GestureBorder
			g.Direction = edge
		}
	}
	return g, true
}

// vote tallies the direction of every contact. Only a strict maximum wins;
// any tie for first place yields DirectionNone.
func vote(ready []tracker.Ready) model.Direction {
	var votes [directionCount]int
	for _, r := range ready {
		votes[geometry.Direction(r.State.Start, r.State.Latest)]++
	}

	best, winner, tied := 0, model.DirectionNone, false
	for d, n := range votes {
		switch {
		case n > best:
			best, winner, tied = n, model.Direction(d), false //nolint:gosec // d < directionCount
		case n == best && n > 0:
			tied = true
		}
	}
	if tied {
		return model.DirectionNone
	}
	return winner
}

// border returns the edge a single contact started on, or DirectionNone when
// it did not start outside the calibrated rectangle or travelled less than
// the minimum edge distance. Edges are checked left, right, top, bottom.
func (c *Classifier) border(s model.SlotState) model.Direction {
	if geometry.Distance(s.Start, s.Latest) < c.minEdgeDistance {
		return model.DirectionNone
	}
	switch {
	case s.Start.X <= c.bounds.Min.X:
		return model.DirectionLeft
	case s.Start.X >= c.bounds.Max.X:
		return model.DirectionRight
	case s.Start.Y <= c.bounds.Min.Y:
		return model.DirectionUp
	case s.Start.Y >= c.bounds.Max.Y:
		return model.DirectionDown
	default:
		return model.DirectionNone
	}
}

// Package geometry provides the vector helpers used to turn contact
// trajectories into compass directions.
//
// All functions are pure. Angles are in radians and measured against the
// positive X axis of the panel.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/okian/touchgest/internal/domain/model"
)

const (
	quarterPi = math.Pi / 4
	twoPi     = 2 * math.Pi
)

var reference = r2.Vec{X: 1, Y: 0}

func vec(p model.Point) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Sub returns a - b.
func Sub(a, b model.Point) model.Point {
	d := r2.Sub(vec(a), vec(b))
	return model.Point{X: d.X, Y: d.Y}
}

// Length returns the Euclidean norm of v.
func Length(v model.Point) float64 {
	return r2.Norm(vec(v))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b model.Point) float64 {
	return Length(Sub(a, b))
}

// AngleBetween returns the unsigned angle between a and b in [0, pi].
// It returns NaN when either vector has zero length.
func AngleBetween(a, b model.Point) float64 {
	return angle(vec(a), vec(b))
}

func angle(a, b r2.Vec) float64 {
	if r2.Norm(a) == 0 || r2.Norm(b) == 0 {
		return math.NaN()
	}
	// acos of the cosine loses precision near 0 and pi
	return math.Atan2(math.Abs(r2.Cross(a, b)), r2.Dot(a, b))
}

// NormalizedAngle returns the angle of the vector from -> to in [0, 2pi).
// Movements towards the bottom of the screen (positive Y) land in the upper
// half of the range. It returns NaN when from == to.
func NormalizedAngle(from, to model.Point) float64 {
	d := r2.Sub(vec(to), vec(from))
	if d.X == 0 && d.Y == 0 {
		return math.NaN()
	}
	a := angle(d, reference)
	if d.Y > 0 {
		a = twoPi - a
	}
	if a >= twoPi {
		return 0
	}
	return a
}

// BucketDirection maps an angle from NormalizedAngle to one of four 90 degree
// sectors centred on the axes. Each sector excludes its lower boundary and
// includes its upper one. NaN maps to DirectionNone.
func BucketDirection(angle float64) model.Direction {
	switch {
	case math.IsNaN(angle):
		return model.DirectionNone
	case 3*quarterPi >= angle && angle > quarterPi:
		return model.DirectionUp
	case 5*quarterPi >= angle && angle > 3*quarterPi:
		return model.DirectionLeft
	case 7*quarterPi >= angle && angle > 5*quarterPi:
		return model.DirectionDown
	default:
		return model.DirectionRight
	}
}

// Direction is BucketDirection(NormalizedAngle(from, to)).
func Direction(from, to model.Point) model.Direction {
	return BucketDirection(NormalizedAngle(from, to))
}

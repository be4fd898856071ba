package replay

import (
	"fmt"
	"io"

	"github.com/knadh/koanf/parsers/yaml"

	"github.com/okian/touchgest/internal/domain/model"
)

// Constants for synthetic gesture geometry.
const (
	fingerSpacing  = 20.0  // distance between neighbouring fingers
	swipeLength    = 100.0 // travel of a movement swipe
	edgeSwipeIn    = 50.0  // travel of a border swipe
	edgeOffset     = 2.0   // how far outside the edge a border swipe starts
	tapDurationMs  = 40
	swipeStepMs    = 25
	gestureSpacing = 200 // device time between generated gestures
)

// Tap builds a tap with the given number of fingers centred on at.
func Tap(fingers int, at model.Point, t uint32) [][]model.TouchEvent {
	var downs, ups []model.TouchEvent
	for i := 0; i < fingers; i++ {
		p := model.Point{X: at.X + float64(i)*fingerSpacing, Y: at.Y}
		downs = append(downs, model.TouchEvent{Kind: model.EventDown, Slot: i, Position: p, Time: t})
		ups = append(ups, model.TouchEvent{Kind: model.EventUp, Slot: i, Time: t + tapDurationMs})
	}
	return [][]model.TouchEvent{downs, ups}
}

// Swipe builds a straight swipe of length units in direction d. Fingers are
// laid out side by side starting at from.
func Swipe(fingers int, from model.Point, d model.Direction, length float64, t uint32) [][]model.TouchEvent {
	dx, dy := offset(d)
	batches := make([][]model.TouchEvent, 4)
	for i := 0; i < fingers; i++ {
		start := model.Point{X: from.X, Y: from.Y}
		if dx == 0 {
			start.X += float64(i) * fingerSpacing
		} else {
			start.Y += float64(i) * fingerSpacing
		}
		mid := model.Point{X: start.X + dx*length/2, Y: start.Y + dy*length/2}
		end := model.Point{X: start.X + dx*length, Y: start.Y + dy*length}

		batches[0] = append(batches[0], model.TouchEvent{Kind: model.EventDown, Slot: i, Position: start, Time: t})
		batches[1] = append(batches[1], model.TouchEvent{Kind: model.EventMotion, Slot: i, Position: mid, Time: t + swipeStepMs})
		batches[2] = append(batches[2], model.TouchEvent{Kind: model.EventMotion, Slot: i, Position: end, Time: t + 2*swipeStepMs})
		batches[3] = append(batches[3], model.TouchEvent{Kind: model.EventUp, Slot: i, Time: t + 3*swipeStepMs})
	}
	return batches
}

// EdgeSwipe builds a one finger swipe that starts just outside edge of b and
// moves into the rectangle. edge names the side: DirectionUp is the top.
func EdgeSwipe(b model.Bounds, edge model.Direction, t uint32) [][]model.TouchEvent {
	mid := model.Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
	var start model.Point
	var inward model.Direction
	switch edge {
	case model.DirectionUp:
		start, inward = model.Point{X: mid.X, Y: b.Min.Y - edgeOffset}, model.DirectionDown
	case model.DirectionRight:
		start, inward = model.Point{X: b.Max.X + edgeOffset, Y: mid.Y}, model.DirectionLeft
	case model.DirectionDown:
		start, inward = model.Point{X: mid.X, Y: b.Max.Y + edgeOffset}, model.DirectionUp
	case model.DirectionLeft:
		start, inward = model.Point{X: b.Min.X - edgeOffset, Y: mid.Y}, model.DirectionRight
	default:
		return nil
	}
	return Swipe(1, start, inward, edgeSwipeIn, t)
}

// Demo builds a script that performs every gesture kind once inside b: one
// and two finger taps, one and two finger swipes in all four directions and
// a border swipe from each edge.
func Demo(b model.Bounds) ([][]model.TouchEvent, []model.Gesture) {
	center := model.Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
	dirs := []model.Direction{model.DirectionUp, model.DirectionRight, model.DirectionDown, model.DirectionLeft}

	var (
		batches [][]model.TouchEvent
		want    []model.Gesture
		t       uint32
	)
	add := func(bs [][]model.TouchEvent, g model.Gesture) {
		batches = append(batches, bs...)
		want = append(want, g)
		t += gestureSpacing
	}

	for fingers := 1; fingers <= 2; fingers++ {
		add(Tap(fingers, center, t), model.Gesture{Type: model.GestureTap, Fingers: uint8(fingers)}) //nolint:gosec // 1 or 2
	}
	for fingers := 1; fingers <= 2; fingers++ {
		for _, d := range dirs {
			add(Swipe(fingers, center, d, swipeLength, t),
				model.Gesture{Type: model.GestureMovement, Direction: d, Fingers: uint8(fingers)}) //nolint:gosec // 1 or 2
		}
	}
	for _, edge := range dirs {
		add(EdgeSwipe(b, edge, t), model.Gesture{Type: model.GestureBorder, Direction: edge, Fingers: 1})
	}
	return batches, want
}

func offset(d model.Direction) (float64, float64) {
	switch d {
	case model.DirectionUp:
		return 0, -1
	case model.DirectionRight:
		return 1, 0
	case model.DirectionDown:
		return 0, 1
	case model.DirectionLeft:
		return -1, 0
	default:
		return 0, 0
	}
}

// WriteScript encodes batches in the YAML format read by device.LoadScript.
func WriteScript(w io.Writer, batches [][]model.TouchEvent) error {
	out := make([]any, len(batches))
	for i, b := range batches {
		evs := make([]any, len(b))
		for j, ev := range b {
			m := map[string]any{
				"kind": ev.Kind.String(),
				"slot": ev.Slot,
				"time": ev.Time,
			}
			if ev.Kind == model.EventDown || ev.Kind == model.EventMotion {
				m["x"] = ev.Position.X
				m["y"] = ev.Position.Y
			}
			evs[j] = m
		}
		out[i] = evs
	}

	data, err := yaml.Parser().Marshal(map[string]any{"batches": out})
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}

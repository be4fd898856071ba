// Package tracker keeps the per-slot state of every contact on the panel.
//
// The tracker is owned by the recognition loop and is not safe for concurrent
// use. DrainReady is the single place where completed contacts are consumed.
package tracker

import (
	"fmt"

	"github.com/okian/touchgest/internal/domain/model"
)

// Ready is a completed contact handed to the classifier.
type Ready struct {
	Slot  int
	State model.SlotState
}

// Tracker is a fixed-capacity array of slot state machines indexed by slot id.
type Tracker struct {
	slots [model.SlotCapacity]model.SlotState
}

// New returns a tracker with every slot zeroed.
func New() *Tracker {
	return &Tracker{}
}

// Apply updates the slot addressed by ev.
func (t *Tracker) Apply(ev model.TouchEvent) error {
	if ev.Slot < 0 || ev.Slot >= len(t.slots) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, ev.Slot)
	}
	s := &t.slots[ev.Slot]

	switch ev.Kind {
	case model.EventDown:
		*s = model.SlotState{
			Start:      ev.Position,
			StartTime:  ev.Time,
			Latest:     ev.Position,
			LatestTime: ev.Time,
			Down:       true,
		}
	case model.EventMotion:
		// a lifted or cancelled slot must not come back to life
		if !s.Down {
			return nil
		}
		s.Latest = ev.Position
		s.LatestTime = ev.Time
	case model.EventUp:
		if !s.Down {
			return nil
		}
		s.Down = false
		s.Ready = true
	case model.EventCancel:
		*s = model.SlotState{}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownEvent, ev.Kind)
	}
	return nil
}

// AnyDown reports whether at least one contact is still on the panel.
func (t *Tracker) AnyDown() bool {
	for i := range t.slots {
		if t.slots[i].Down {
			return true
		}
	}
	return false
}

// DownCount returns the number of contacts currently on the panel.
func (t *Tracker) DownCount() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].Down {
			n++
		}
	}
	return n
}

// DrainReady returns every ready slot in ascending id order and clears their
// ready flag. A second call without intervening events returns nil.
func (t *Tracker) DrainReady() []Ready {
	var out []Ready
	for i := range t.slots {
		if !t.slots[i].Ready {
			continue
		}
		t.slots[i].Ready = false
		out = append(out, Ready{Slot: i, State: t.slots[i]})
	}
	return out
}

// Slot returns a snapshot of one slot. Out of range ids return the zero state.
func (t *Tracker) Slot(id int) model.SlotState {
	if id < 0 || id >= len(t.slots) {
		return model.SlotState{}
	}
	return t.slots[id]
}

// Reset clears every slot.
func (t *Tracker) Reset() {
	t.slots = [model.SlotCapacity]model.SlotState{}
}

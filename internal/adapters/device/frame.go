package device

import (
	"context"

	"github.com/okian/touchgest/internal/domain/model"
	"github.com/okian/touchgest/pkg/logger"
)

type mtSlot struct {
	// tracking is the kernel tracking id, -1 when no contact is known.
	tracking int32
	// reported is set between the Down and the Up emitted for a contact.
	reported bool
	// Per-frame changes, cleared after every SYN_REPORT.
	began, ended, moved bool
	// Last raw position. The kernel only sends axes that changed.
	x, y int32
}

// Assembler translates a multitouch protocol B event stream into touch
// events, one batch per SYN_REPORT.
//
// A contact produces events only if the assembler saw its tracking id begin.
// Contacts already on the panel when reading started, or that were active
// across a SYN_DROPPED, are ignored until they are lifted.
type Assembler struct {
	slots    [model.SlotCapacity]mtSlot
	current  int
	dropping bool
	scaleX   float64
	scaleY   float64
	logger   logger.Logger
	ignored  map[int]bool
}

// NewAssembler creates an assembler. resX and resY are the axis resolutions
// in units per millimetre; positions are reported in millimetres when they
// are positive and in raw device units otherwise.
func NewAssembler(log logger.Logger, resX, resY int32) *Assembler {
	a := &Assembler{
		scaleX:  1,
		scaleY:  1,
		logger:  log,
		ignored: make(map[int]bool),
	}
	if resX > 0 {
		a.scaleX = 1 / float64(resX)
	}
	if resY > 0 {
		a.scaleY = 1 / float64(resY)
	}
	a.Reset()
	return a
}

// Reset forgets every known contact. The current slot and the last
// positions are kept since the kernel does not resend them.
func (a *Assembler) Reset() {
	for i := range a.slots {
		s := &a.slots[i]
		*s = mtSlot{tracking: -1, x: s.x, y: s.y}
	}
	a.dropping = false
}

// Feed consumes one raw event. It returns the batches completed by a
// SYN_REPORT or the cancellations caused by a SYN_DROPPED, or nil.
func (a *Assembler) Feed(ev RawEvent) [][]model.TouchEvent {
	switch ev.Type {
	case evSyn:
		return a.sync(ev)
	case evAbs:
		if !a.dropping {
			a.abs(ev)
		}
	}
	return nil
}

func (a *Assembler) sync(ev RawEvent) [][]model.TouchEvent {
	switch ev.Code {
	case synDropped:
		// Everything up to the next SYN_REPORT is unreliable.
		return a.cancelAll(ev.Time)
	case synReport:
		if a.dropping {
			a.dropping = false
			a.clearFrame()
			return nil
		}
		return a.flush(ev.Time)
	}
	return nil
}

func (a *Assembler) abs(ev RawEvent) {
	if ev.Code == absMTSlot {
		a.current = int(ev.Value)
		return
	}
	if a.current < 0 || a.current >= model.SlotCapacity {
		a.outOfRange(ev)
		return
	}

	s := &a.slots[a.current]
	switch ev.Code {
	case absMTTrackingID:
		switch {
		case ev.Value < 0:
			s.ended = s.ended || s.reported
			s.began = false
			s.tracking = -1
		case ev.Value != s.tracking:
			// A new contact, possibly replacing one within the same frame.
			s.ended = s.ended || s.reported
			s.began = true
			s.tracking = ev.Value
		}
	case absMTPositionX:
		s.x = ev.Value
		s.moved = true
	case absMTPositionY:
		s.y = ev.Value
		s.moved = true
	}
}

func (a *Assembler) outOfRange(ev RawEvent) {
	if ev.Code != absMTTrackingID {
		return
	}
	if ev.Value < 0 {
		delete(a.ignored, a.current)
		return
	}
	if !a.ignored[a.current] {
		a.ignored[a.current] = true
		a.logger.Warn(context.Background(), "ignoring contact beyond slot capacity",
			logger.Int("slot", a.current), logger.Int("capacity", model.SlotCapacity))
	}
}

func (a *Assembler) point(s *mtSlot) model.Point {
	return model.Point{X: float64(s.x) * a.scaleX, Y: float64(s.y) * a.scaleY}
}

// flush emits the changes of the frame ending at t. A contact replaced
// within the frame is lifted in a batch of its own, ahead of the frame's
// other events, so the replaced contact completes before its slot is reused.
func (a *Assembler) flush(t uint32) [][]model.TouchEvent {
	var batch, ups, rest []model.TouchEvent
	replaced := false
	for i := range a.slots {
		s := &a.slots[i]
		if s.ended {
			up := model.TouchEvent{Kind: model.EventUp, Slot: i, Time: t}
			batch = append(batch, up)
			ups = append(ups, up)
			s.reported = false
			replaced = replaced || s.began
		}
		var ev model.TouchEvent
		switch {
		case s.began:
			ev = model.TouchEvent{Kind: model.EventDown, Slot: i, Position: a.point(s), Time: t}
			s.reported = true
		case s.moved && s.reported:
			ev = model.TouchEvent{Kind: model.EventMotion, Slot: i, Position: a.point(s), Time: t}
		default:
			continue
		}
		batch = append(batch, ev)
		rest = append(rest, ev)
	}
	a.clearFrame()

	switch {
	case replaced:
		return [][]model.TouchEvent{ups, rest}
	case len(batch) > 0:
		return [][]model.TouchEvent{batch}
	}
	return nil
}

// cancelAll emits Cancel for every reported contact, forgets all contacts
// and discards input until the next SYN_REPORT.
func (a *Assembler) cancelAll(t uint32) [][]model.TouchEvent {
	var batch []model.TouchEvent
	for i := range a.slots {
		if a.slots[i].reported {
			batch = append(batch, model.TouchEvent{Kind: model.EventCancel, Slot: i, Time: t})
		}
	}
	a.Reset()
	a.dropping = true
	if len(batch) == 0 {
		return nil
	}
	return [][]model.TouchEvent{batch}
}

func (a *Assembler) clearFrame() {
	for i := range a.slots {
		s := &a.slots[i]
		s.began, s.ended, s.moved = false, false, false
	}
}

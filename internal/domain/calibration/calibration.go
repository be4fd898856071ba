// Package calibration derives the usable screen rectangle from swipes along
// each edge of the panel.
//
// The operator swipes in from the top, right, bottom and left edges, in that
// order. Only the touch-down point of each swipe is sampled. Once a stage has
// collected its samples the extreme value becomes that side of the rectangle.
package calibration

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/okian/touchgest/internal/domain/model"
	"github.com/okian/touchgest/internal/domain/tracker"
)

// DefaultSamples is the number of swipes collected per edge.
const DefaultSamples = 5

// Progress reports what a Feed call did.
type Progress struct {
	// Stage is the stage the session is in after the call.
	Stage Stage
	// Samples is the number of samples buffered for Stage.
	Samples int
	// Recorded is true when the call added a sample.
	Recorded bool
	// Advanced is true when the call completed a stage.
	Advanced bool
	// Label is the operator prompt for Stage, set when Advanced.
	Label string
}

// Session is one run of the calibration protocol. It is not safe for
// concurrent use.
type Session struct {
	id      uuid.UUID
	samples int
	stage   int
	buf     []float64
	bounds  model.Bounds
}

// New starts a session at the top edge.
func New(opts ...Option) *Session {
	s := &Session{
		id:      uuid.New(),
		samples: DefaultSamples,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.buf = make([]float64, 0, s.samples)
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id.String() }

// Samples returns the number of samples required per stage.
func (s *Session) Samples() int { return s.samples }

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	if s.stage >= len(order) {
		return StageDone
	}
	return order[s.stage]
}

// Done reports whether every edge has been calibrated.
func (s *Session) Done() bool { return s.Stage() == StageDone }

// Bounds returns the rectangle accumulated so far. It is complete once Done
// reports true.
func (s *Session) Bounds() model.Bounds { return s.bounds }

// Feed consumes the contacts drained in one cycle. A cycle with more than one
// contact is rejected with ErrMultipleFingers and leaves the session as it was.
// When the last stage completes the bounds are validated and ErrInvalidBounds
// is returned if they are empty.
func (s *Session) Feed(ready []tracker.Ready) (Progress, error) {
	stage := s.Stage()
	if stage == StageDone {
		return Progress{Stage: stage}, ErrCalibrationDone
	}
	if len(ready) == 0 {
		return Progress{Stage: stage, Samples: len(s.buf)}, nil
	}
	if len(ready) > 1 {
		return Progress{Stage: stage, Samples: len(s.buf)}, ErrMultipleFingers
	}

	start := ready[0].State.Start
	if stage.horizontal() {
		s.buf = append(s.buf, start.X)
	} else {
		s.buf = append(s.buf, start.Y)
	}
	if len(s.buf) < s.samples {
		return Progress{Stage: stage, Samples: len(s.buf), Recorded: true}, nil
	}

	s.commit(stage)
	s.stage = s.indexOf(next(stage))
	s.buf = s.buf[:0]

	p := Progress{Stage: s.Stage(), Recorded: true, Advanced: true, Label: s.Stage().Label()}
	if s.Done() && !s.bounds.Valid() {
		return p, ErrInvalidBounds
	}
	return p, nil
}

// commit stores the extreme sample of the finished stage.
func (s *Session) commit(stage Stage) {
	switch stage {
	case StageTop:
		s.bounds.Min.Y = floats.Min(s.buf)
	case StageRight:
		s.bounds.Max.X = floats.Max(s.buf)
	case StageBottom:
		s.bounds.Max.Y = floats.Max(s.buf)
	case StageLeft:
		s.bounds.Min.X = floats.Min(s.buf)
	case StageDone:
	}
}

func (s *Session) indexOf(st Stage) int {
	for i, o := range order {
		if o == st {
			return i
		}
	}
	return len(order)
}

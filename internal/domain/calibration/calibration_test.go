package calibration_test

import (
	"errors"
	"testing"

	"github.com/okian/touchgest/internal/domain/calibration"
	"github.com/okian/touchgest/internal/domain/model"
	"github.com/okian/touchgest/internal/domain/tracker"
	. "github.com/smartystreets/goconvey/convey"
)

func swipe(x, y float64) []tracker.Ready {
	return []tracker.Ready{{Slot: 0, State: model.SlotState{
		Start:  model.Point{X: x, Y: y},
		Latest: model.Point{X: 500, Y: 300},
	}}}
}

// feedStage sends one swipe per value, sampling Y for top/bottom and X for
// left/right.
func feedStage(s *calibration.Session, values ...float64) calibration.Progress {
	var p calibration.Progress
	var err error
	for _, v := range values {
		if s.Stage() == calibration.StageLeft || s.Stage() == calibration.StageRight {
			p, err = s.Feed(swipe(v, 300))
		} else {
			p, err = s.Feed(swipe(500, v))
		}
		So(err, ShouldBeNil)
	}
	return p
}

func TestCalibrationProtocol(t *testing.T) {
	Convey("Given a new calibration session", t, func() {
		s := calibration.New()

		Convey("Then it starts at the top edge with five samples per stage", func() {
			So(s.Stage(), ShouldEqual, calibration.StageTop)
			So(s.Samples(), ShouldEqual, calibration.DefaultSamples)
			So(s.Done(), ShouldBeFalse)
			So(s.ID(), ShouldNotBeEmpty)
		})

		Convey("When fewer than five swipes arrive", func() {
			p := feedStage(s, 3, 2, 4, 1)

			Convey("Then the stage does not advance", func() {
				So(p.Stage, ShouldEqual, calibration.StageTop)
				So(p.Samples, ShouldEqual, 4)
				So(p.Recorded, ShouldBeTrue)
				So(p.Advanced, ShouldBeFalse)
				So(p.Label, ShouldBeEmpty)
			})
		})

		Convey("When an empty cycle arrives", func() {
			p, err := s.Feed(nil)
			So(err, ShouldBeNil)
			So(p.Recorded, ShouldBeFalse)
			So(p.Stage, ShouldEqual, calibration.StageTop)
		})

		Convey("When every edge receives its swipes", func() {
			p := feedStage(s, 3, 2, 4, 1, 5)
			So(p.Advanced, ShouldBeTrue)
			So(p.Stage, ShouldEqual, calibration.StageRight)
			So(p.Label, ShouldEqual, "Right edge")

			p = feedStage(s, 995, 1002, 998, 990, 1001)
			So(p.Stage, ShouldEqual, calibration.StageBottom)

			p = feedStage(s, 597, 603, 600, 601, 599)
			So(p.Stage, ShouldEqual, calibration.StageLeft)
			So(p.Label, ShouldEqual, calibration.StageLeft.Label())

			p = feedStage(s, 4, -1, 2, 0, 3)

			Convey("Then the session is done with min of top/left and max of bottom/right", func() {
				So(p.Advanced, ShouldBeTrue)
				So(p.Stage, ShouldEqual, calibration.StageDone)
				So(s.Done(), ShouldBeTrue)
				So(s.Bounds(), ShouldResemble, model.Bounds{
					Min: model.Point{X: -1, Y: 1},
					Max: model.Point{X: 1002, Y: 603},
				})
			})

			Convey("Then further input is refused", func() {
				_, err := s.Feed(swipe(1, 1))
				So(errors.Is(err, calibration.ErrCalibrationDone), ShouldBeTrue)
			})
		})
	})
}

func TestCalibrationOrderIndependence(t *testing.T) {
	Convey("Given the same samples in two different orders", t, func() {
		a := calibration.New(calibration.WithSamples(3))
		b := calibration.New(calibration.WithSamples(3))

		feedStage(a, 10, 20, 30)
		feedStage(a, 800, 900, 850)
		feedStage(a, 500, 550, 520)
		feedStage(a, 7, 5, 9)

		feedStage(b, 30, 10, 20)
		feedStage(b, 850, 800, 900)
		feedStage(b, 550, 520, 500)
		feedStage(b, 9, 7, 5)

		Convey("Then both produce the same bounds", func() {
			So(a.Done(), ShouldBeTrue)
			So(b.Done(), ShouldBeTrue)
			So(a.Bounds(), ShouldResemble, b.Bounds())
			So(a.Bounds(), ShouldResemble, model.Bounds{
				Min: model.Point{X: 5, Y: 10},
				Max: model.Point{X: 900, Y: 550},
			})
		})
	})
}

func TestCalibrationRejectsMultipleFingers(t *testing.T) {
	Convey("Given a session part way through the top edge", t, func() {
		s := calibration.New()
		feedStage(s, 3, 2)

		Convey("When two fingers are lifted together", func() {
			two := append(swipe(500, 0), swipe(600, 0)[0])
			p, err := s.Feed(two)

			Convey("Then the cycle is rejected without touching the buffer", func() {
				So(errors.Is(err, calibration.ErrMultipleFingers), ShouldBeTrue)
				So(p.Recorded, ShouldBeFalse)
				So(p.Samples, ShouldEqual, 2)
				So(s.Stage(), ShouldEqual, calibration.StageTop)
			})

			Convey("And the stage completes with the next single swipes", func() {
				p := feedStage(s, 1, 4, 5)
				So(p.Stage, ShouldEqual, calibration.StageRight)
				So(s.Bounds().Min.Y, ShouldEqual, 1)
			})
		})
	})
}

func TestCalibrationInvalidBounds(t *testing.T) {
	Convey("Given swipes that collapse an axis", t, func() {
		s := calibration.New(calibration.WithSamples(1))
		feedStage(s, 100)
		feedStage(s, 50)
		feedStage(s, 600)

		_, err := s.Feed(swipe(80, 300))

		Convey("Then completion reports invalid bounds", func() {
			So(errors.Is(err, calibration.ErrInvalidBounds), ShouldBeTrue)
			So(s.Done(), ShouldBeTrue)
		})
	})
}

func TestStageLabels(t *testing.T) {
	Convey("Given every stage", t, func() {
		So(calibration.StageTop.Label(), ShouldEqual, "Top edge")
		So(calibration.StageRight.Label(), ShouldEqual, "Right edge")
		So(calibration.StageBottom.Label(), ShouldEqual, "Bottom edge")
		So(calibration.StageLeft.Label(), ShouldEqual, "Left edge")
		So(calibration.StageDone.Label(), ShouldEqual, "Finished calibrating")
		So(calibration.StageBottom.String(), ShouldEqual, "bottom")
		So(calibration.StageDone.String(), ShouldEqual, "done")
	})

	Convey("Given WithSamples with a non-positive count", t, func() {
		s := calibration.New(calibration.WithSamples(0))
		So(s.Samples(), ShouldEqual, calibration.DefaultSamples)
	})
}

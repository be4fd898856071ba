package replay_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/touchgest/internal/adapters/device"
	"github.com/okian/touchgest/internal/adapters/repository"
	service "github.com/okian/touchgest/internal/app"
	"github.com/okian/touchgest/internal/domain/model"
	"github.com/okian/touchgest/internal/replay"
	. "github.com/smartystreets/goconvey/convey"
)

type fixedBounds struct{ b model.Bounds }

func (f fixedBounds) LoadBounds(context.Context) (model.Bounds, error) { return f.b, nil }
func (f fixedBounds) SaveBounds(context.Context, model.Bounds) error   { return nil }
func (f fixedBounds) LoadRules(context.Context) ([]model.Rule, []repository.SkippedLine, error) {
	return nil, nil, nil
}

var panel = model.Bounds{Min: model.Point{X: 5, Y: 5}, Max: model.Point{X: 990, Y: 590}}

func TestDemo(t *testing.T) {
	Convey("Given the demo script for a calibrated panel", t, func() {
		batches, want := replay.Demo(panel)
		So(want, ShouldHaveLength, 14)

		Convey("When it is written and loaded back", func() {
			var buf bytes.Buffer
			So(replay.WriteScript(&buf, batches), ShouldBeNil)

			path := filepath.Join(t.TempDir(), "demo.yaml")
			So(os.WriteFile(path, buf.Bytes(), 0o600), ShouldBeNil)

			script, err := device.LoadScript(path)
			So(err, ShouldBeNil)
			So(script.Len(), ShouldEqual, len(batches))

			Convey("Then the pipeline recognizes every gesture in order", func() {
				var got []model.Gesture
				svc := service.New(script, fixedBounds{b: panel},
					service.WithGestureHandler(func(_ context.Context, r service.Recognition) {
						got = append(got, r.Gesture)
					}))
				So(svc.Run(context.Background()), ShouldBeNil)
				So(cmp.Diff(want, got), ShouldBeEmpty)
			})
		})
	})

	Convey("Given an edge swipe for an unknown edge", t, func() {
		Convey("Then nothing is generated", func() {
			So(replay.EdgeSwipe(panel, model.DirectionNone, 0), ShouldBeNil)
		})
	})

	Convey("Given a two finger swipe to the right", t, func() {
		bs := replay.Swipe(2, model.Point{X: 100, Y: 100}, model.DirectionRight, 100, 0)

		Convey("Then the fingers move in parallel and lift together", func() {
			So(bs, ShouldHaveLength, 4)
			So(bs[0], ShouldHaveLength, 2)
			So(bs[2][0].Position, ShouldResemble, model.Point{X: 200, Y: 100})
			So(bs[2][1].Position, ShouldResemble, model.Point{X: 200, Y: 120})
			So(bs[3][1].Kind, ShouldEqual, model.EventUp)
		})
	})
}

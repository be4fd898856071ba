package device_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/touchgest/internal/adapters/device"
	"github.com/okian/touchgest/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScript(t *testing.T) {
	Convey("Given a replay script with three batches", t, func() {
		path := writeScript(t, `
batches:
  - - {kind: down, slot: 0, x: 995, y: 300, time: 0}
  - - {kind: motion, slot: 0, x: 850, y: 305, time: 50}
  - - {kind: up, slot: 0, time: 60}
    - {kind: Cancel, slot: 2}
`)
		s, err := device.LoadScript(path)
		So(err, ShouldBeNil)
		So(s.Len(), ShouldEqual, 3)

		Convey("Then the batches are replayed in order followed by io.EOF", func() {
			ctx := context.Background()
			var got [][]model.TouchEvent
			for {
				b, err := s.Next(ctx)
				if errors.Is(err, io.EOF) {
					break
				}
				So(err, ShouldBeNil)
				got = append(got, b)
			}

			want := [][]model.TouchEvent{
				{{Kind: model.EventDown, Slot: 0, Position: model.Point{X: 995, Y: 300}, Time: 0}},
				{{Kind: model.EventMotion, Slot: 0, Position: model.Point{X: 850, Y: 305}, Time: 50}},
				{{Kind: model.EventUp, Slot: 0, Time: 60}, {Kind: model.EventCancel, Slot: 2}},
			}
			So(cmp.Diff(want, got), ShouldBeEmpty)
		})
	})

	Convey("Given a script with an unknown event kind", t, func() {
		path := writeScript(t, "batches:\n  - - {kind: hover, slot: 0}\n")
		_, err := device.LoadScript(path)

		So(errors.Is(err, device.ErrInvalidScript), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "hover")
	})

	Convey("Given a missing script", t, func() {
		_, err := device.LoadScript(filepath.Join(t.TempDir(), "nope.yaml"))
		So(errors.Is(err, device.ErrInvalidScript), ShouldBeTrue)
	})
}

func TestScriptSource(t *testing.T) {
	Convey("Given an in-memory script", t, func() {
		batch := []model.TouchEvent{{Kind: model.EventDown, Slot: 1}}
		s := device.NewScript([][]model.TouchEvent{batch})

		Convey("Then mutating the input does not change the replay", func() {
			batch[0].Slot = 9
			b, err := s.Next(context.Background())
			So(err, ShouldBeNil)
			So(b[0].Slot, ShouldEqual, 1)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := s.Next(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("When the script is closed", func() {
			So(s.Close(), ShouldBeNil)
			_, err := s.Next(context.Background())
			So(errors.Is(err, device.ErrClosed), ShouldBeTrue)
		})
	})
}

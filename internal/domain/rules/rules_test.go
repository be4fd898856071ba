package rules_test

import (
	"testing"

	"github.com/okian/touchgest/internal/domain/model"
	"github.com/okian/touchgest/internal/domain/rules"
	. "github.com/smartystreets/goconvey/convey"
)

func key(t model.GestureType, d model.Direction, n uint8) model.Gesture {
	return model.Gesture{Type: t, Direction: d, Fingers: n}
}

func TestEngineMatch(t *testing.T) {
	Convey("Given an ordered rule list", t, func() {
		list := []model.Rule{
			{Key: key(model.GestureBorder, model.DirectionRight, 1), Action: "workspace-next"},
			{Key: key(model.GestureMovement, model.DirectionUp, 3), Action: "overview"},
			{Key: key(model.GestureBorder, model.DirectionRight, 1), Action: "shadowed"},
			{Key: key(model.GestureTap, model.DirectionNone, 2), Action: "menu"},
		}
		e := rules.New(list)

		Convey("Then the first matching rule wins", func() {
			action, ok := e.Match(key(model.GestureBorder, model.DirectionRight, 1))
			So(ok, ShouldBeTrue)
			So(action, ShouldEqual, "workspace-next")
		})

		Convey("Then every key field must match exactly", func() {
			_, ok := e.Match(key(model.GestureMovement, model.DirectionUp, 2))
			So(ok, ShouldBeFalse)
			_, ok = e.Match(key(model.GestureMovement, model.DirectionDown, 3))
			So(ok, ShouldBeFalse)
			_, ok = e.Match(key(model.GestureBorder, model.DirectionUp, 3))
			So(ok, ShouldBeFalse)
			action, ok := e.Match(key(model.GestureTap, model.DirectionNone, 2))
			So(ok, ShouldBeTrue)
			So(action, ShouldEqual, "menu")
		})

		Convey("Then the engine is isolated from the caller's slice", func() {
			list[0].Action = "mutated"
			action, _ := e.Match(key(model.GestureBorder, model.DirectionRight, 1))
			So(action, ShouldEqual, "workspace-next")

			got := e.Rules()
			got[0].Action = "mutated"
			So(e.Rules()[0].Action, ShouldEqual, "workspace-next")
			So(e.Len(), ShouldEqual, 4)
		})
	})

	Convey("Given an empty engine", t, func() {
		e := rules.New(nil)
		_, ok := e.Match(key(model.GestureTap, model.DirectionNone, 1))
		So(ok, ShouldBeFalse)
		So(e.Len(), ShouldEqual, 0)
	})
}

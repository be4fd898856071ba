package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/touchgest/internal/adapters/repository"
	"github.com/okian/touchgest/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFileStore(t *testing.T) {
	Convey("Given a file store in an empty directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		rulesPath := filepath.Join(dir, "gestures.conf")
		boundsPath := filepath.Join(dir, "state", "dims")
		s := repository.NewFileStore(rulesPath, boundsPath, repository.WithFileMode(0o600))

		Convey("When nothing has been written", func() {
			_, err := s.LoadBounds(ctx)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, _, err = s.LoadRules(ctx)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When bounds are saved", func() {
			b := model.Bounds{Max: model.Point{X: 990, Y: 600}}
			So(s.SaveBounds(ctx, b), ShouldBeNil)

			Convey("Then they load back from a newly created directory", func() {
				got, err := s.LoadBounds(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, b)

				info, err := os.Stat(boundsPath)
				So(err, ShouldBeNil)
				So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))

				entries, err := os.ReadDir(filepath.Dir(boundsPath))
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})
		})

		Convey("When invalid bounds are saved", func() {
			err := s.SaveBounds(ctx, model.Bounds{})
			So(errors.Is(err, repository.ErrInvalidBounds), ShouldBeTrue)

			_, err = os.Stat(boundsPath)
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("When the calibration file is corrupt", func() {
			So(os.MkdirAll(filepath.Dir(boundsPath), 0o755), ShouldBeNil)
			So(os.WriteFile(boundsPath, []byte("garbage\n"), 0o644), ShouldBeNil)

			_, err := s.LoadBounds(ctx)
			So(errors.Is(err, repository.ErrMalformed), ShouldBeTrue)
		})

		Convey("When a rule file exists", func() {
			So(os.WriteFile(rulesPath, []byte(sampleRules+"BORDER N\n"), 0o644), ShouldBeNil)

			rules, skipped, err := s.LoadRules(ctx)

			Convey("Then rules and skipped lines are returned", func() {
				So(err, ShouldBeNil)
				So(rules, ShouldHaveLength, 4)
				So(skipped, ShouldHaveLength, 1)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := s.LoadBounds(cctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(errors.Is(s.SaveBounds(cctx, model.Bounds{Max: model.Point{X: 1, Y: 1}}), context.Canceled), ShouldBeTrue)
		})
	})
}

//go:build linux

package device

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/okian/touchgest/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func encodeEvent(sec, usec int64, typ, code uint16, value int32) []byte {
	b := make([]byte, eventSize)
	tv := eventSize - 8
	if tv == 16 {
		binary.NativeEndian.PutUint64(b[0:8], uint64(sec))
		binary.NativeEndian.PutUint64(b[8:16], uint64(usec))
	} else {
		binary.NativeEndian.PutUint32(b[0:4], uint32(sec))
		binary.NativeEndian.PutUint32(b[4:8], uint32(usec))
	}
	binary.NativeEndian.PutUint16(b[tv:tv+2], typ)
	binary.NativeEndian.PutUint16(b[tv+2:tv+4], code)
	binary.NativeEndian.PutUint32(b[tv+4:tv+8], uint32(value))
	return b
}

func TestDecodeEvent(t *testing.T) {
	Convey("Given an encoded input_event", t, func() {
		ev := decodeEvent(encodeEvent(12, 345_678, evAbs, absMTTrackingID, -1))

		Convey("Then every field round-trips", func() {
			So(ev, ShouldResemble, RawEvent{Time: 12_345, Type: evAbs, Code: absMTTrackingID, Value: -1})
		})
	})
}

func TestIoctlEncoding(t *testing.T) {
	Convey("Given the evdev ioctl requests", t, func() {
		So(evioCGrab(), ShouldEqual, uintptr(0x40044590))
		So(evioCGAbs(absMTSlot), ShouldEqual, uintptr(0x8018456f))
		So(evioCGBit(evAbs, 8), ShouldEqual, uintptr(0x80084523))
	})
}

func TestOpenMissingDevice(t *testing.T) {
	Convey("Given a path that does not exist", t, func() {
		So(logger.Init(logger.WithWriter(io.Discard)), ShouldBeNil)
		_, err := Open("/dev/input/does-not-exist", WithLogger(nil), WithGrab(false))
		So(err, ShouldNotBeNil)
		So(errors.Is(err, ErrNotMultitouch), ShouldBeFalse)
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Discover(ctx)
		So(err, ShouldNotBeNil)
	})
}

func TestFlushResyncsSlot(t *testing.T) {
	Convey("Given a device queue holding a slot change", t, func() {
		So(logger.Init(logger.WithWriter(io.Discard)), ShouldBeNil)

		var p [2]int
		So(unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC), ShouldBeNil)
		defer func() { _ = unix.Close(p[1]) }()

		var queued []byte
		queued = append(queued, encodeEvent(0, 0, evAbs, absMTSlot, 2)...)
		queued = append(queued, encodeEvent(0, 0, evAbs, absMTTrackingID, 5)...)
		queued = append(queued, encodeEvent(0, 0, evSyn, synReport, 0)...)
		_, err := unix.Write(p[1], queued)
		So(err, ShouldBeNil)

		e := &Evdev{
			path: "pipe",
			fd:   p[0],
			opts: defaultSettings(),
			asm:  NewAssembler(logger.Get(), 0, 0),
			buf:  make([]byte, eventSize*readBatch),
		}
		defer func() { _ = e.Close() }()

		var drainedFirst bool
		restore := queryAbs
		queryAbs = func(fd, code int) (absInfo, error) {
			_, rerr := unix.Read(fd, make([]byte, eventSize))
			drainedFirst = errors.Is(rerr, unix.EAGAIN)
			return absInfo{Value: 4}, nil
		}
		defer func() { queryAbs = restore }()

		Convey("When the queue is flushed", func() {
			So(e.Flush(), ShouldBeNil)

			Convey("Then the slot is read back after the queue is empty", func() {
				So(drainedFirst, ShouldBeTrue)
				So(e.asm.current, ShouldEqual, 4)
				So(e.pending, ShouldBeEmpty)
			})
		})
	})
}

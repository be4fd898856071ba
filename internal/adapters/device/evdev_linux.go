//go:build linux

package device

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/okian/touchgest/internal/domain/model"
	"github.com/okian/touchgest/pkg/logger"
)

// inputDir is scanned by Discover.
const inputDir = "/dev/input"

// readBatch is the number of input_event records read per syscall.
const readBatch = 64

type absInfo struct {
	Value      int32
	Min        int32
	Max        int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// ioctl request encoding (Linux _IOC macro).
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr((dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift))
}

// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
func evioCGAbs(code int) uintptr {
	return ioc(iocRead, uint32('E'), uint32(0x40+code), uint32(unsafe.Sizeof(absInfo{})))
}

// EVIOCGBIT(ev, len) = _IOC(_IOC_READ, 'E', 0x20 + ev, len)
func evioCGBit(ev, size int) uintptr {
	return ioc(iocRead, uint32('E'), uint32(0x20+ev), uint32(size))
}

// EVIOCGRAB = _IOW('E', 0x90, int)
func evioCGrab() uintptr {
	return ioc(iocWrite, uint32('E'), 0x90, uint32(unsafe.Sizeof(int32(0))))
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// queryAbs reads the current state of an absolute axis.
var queryAbs = getAbsInfo

func getAbsInfo(fd, code int) (absInfo, error) {
	var info absInfo
	if err := ioctl(fd, evioCGAbs(code), unsafe.Pointer(&info)); err != nil {
		return absInfo{}, err
	}
	return info, nil
}

// isMultitouch reports whether the device advertises protocol B slots with
// positions.
func isMultitouch(fd int) bool {
	var bits [absMax/8 + 1]byte
	if err := ioctl(fd, evioCGBit(evAbs, len(bits)), unsafe.Pointer(&bits[0])); err != nil {
		return false
	}
	has := func(code int) bool { return bits[code/8]&(1<<(code%8)) != 0 }
	return has(absMTSlot) && has(absMTPositionX) && has(absMTPositionY)
}

// eventSize is sizeof(struct input_event) for this platform.
const eventSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

// decodeEvent parses one native-endian input_event record.
func decodeEvent(b []byte) RawEvent {
	var sec, usec int64
	tv := eventSize - 8
	if tv == 16 {
		sec = int64(binary.NativeEndian.Uint64(b[0:8]))   //nolint:gosec // timeval is signed
		usec = int64(binary.NativeEndian.Uint64(b[8:16])) //nolint:gosec // timeval is signed
	} else {
		sec = int64(int32(binary.NativeEndian.Uint32(b[0:4])))  //nolint:gosec // timeval is signed
		usec = int64(int32(binary.NativeEndian.Uint32(b[4:8]))) //nolint:gosec // timeval is signed
	}
	return RawEvent{
		Time:  millis(sec, usec),
		Type:  binary.NativeEndian.Uint16(b[tv : tv+2]),
		Code:  binary.NativeEndian.Uint16(b[tv+2 : tv+4]),
		Value: int32(binary.NativeEndian.Uint32(b[tv+4 : tv+8])), //nolint:gosec // value is signed
	}
}

// Evdev reads a multitouch device node.
type Evdev struct {
	path    string
	fd      int
	grabbed bool
	opts    settings
	asm     *Assembler
	buf     []byte
	pending [][]model.TouchEvent

	mu     sync.Mutex
	closed bool
}

// Open opens a multitouch device, optionally grabs it, and discards any
// events already queued on it.
func Open(path string, opts ...Option) (*Evdev, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !isMultitouch(fd) {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%s: %w", path, ErrNotMultitouch)
	}

	var resX, resY int32
	if info, err := getAbsInfo(fd, absMTPositionX); err == nil {
		resX = info.Resolution
	}
	if info, err := getAbsInfo(fd, absMTPositionY); err == nil {
		resY = info.Resolution
	}

	e := &Evdev{
		path: path,
		fd:   fd,
		opts: s,
		asm:  NewAssembler(s.logger, resX, resY),
		buf:  make([]byte, eventSize*readBatch),
	}

	if s.grab {
		one := int32(1)
		if err := ioctl(fd, evioCGrab(), unsafe.Pointer(&one)); err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("grab %s: %w", path, err)
		}
		e.grabbed = true
	}

	if err := e.Flush(); err != nil {
		_ = e.Close()
		return nil, err
	}

	s.logger.Info(context.Background(), "touch device opened",
		logger.String("path", path),
		logger.Bool("grabbed", e.grabbed),
		logger.Int("resolution_x", int(resX)),
		logger.Int("resolution_y", int(resY)))
	return e, nil
}

// Path returns the device node.
func (e *Evdev) Path() string { return e.path }

// Flush discards every event queued on the device and forgets all contacts.
// The current slot is read back from the kernel once the queue is empty,
// since the discarded events may have moved it.
func (e *Evdev) Flush() error {
	for {
		_, err := unix.Read(e.fd, e.buf)
		switch {
		case err == nil:
			continue
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			e.asm.Reset()
			e.pending = nil
			if info, err := queryAbs(e.fd, absMTSlot); err == nil {
				e.asm.current = int(info.Value)
			}
			return nil
		default:
			return fmt.Errorf("flush %s: %w", e.path, err)
		}
	}
}

// Next returns the events of the next completed frame.
func (e *Evdev) Next(ctx context.Context) ([]model.TouchEvent, error) {
	for {
		if len(e.pending) > 0 {
			batch := e.pending[0]
			e.pending = e.pending[1:]
			return batch, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.isClosed() {
			return nil, ErrClosed
		}

		n, err := unix.Read(e.fd, e.buf)
		switch {
		case err == nil:
			e.decode(e.buf[:n])
		case errors.Is(err, unix.EINTR):
		case errors.Is(err, unix.EAGAIN):
			if err := e.wait(); err != nil {
				return nil, err
			}
		case errors.Is(err, unix.EBADF) && e.isClosed():
			return nil, ErrClosed
		default:
			return nil, fmt.Errorf("read %s: %w", e.path, err)
		}
	}
}

func (e *Evdev) wait() error {
	pfd := []unix.PollFd{{Fd: int32(e.fd), Events: unix.POLLIN}} //nolint:gosec // fd fits in int32
	_, err := unix.Poll(pfd, int(e.opts.pollInterval.Milliseconds()))
	if err != nil && !errors.Is(err, unix.EINTR) {
		return fmt.Errorf("poll %s: %w", e.path, err)
	}
	if pfd[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 && pfd[0].Revents&unix.POLLIN == 0 {
		if e.isClosed() {
			return ErrClosed
		}
		return fmt.Errorf("poll %s: device gone", e.path)
	}
	return nil
}

func (e *Evdev) decode(b []byte) {
	for len(b) >= eventSize {
		e.pending = append(e.pending, e.asm.Feed(decodeEvent(b[:eventSize]))...)
		b = b[eventSize:]
	}
}

func (e *Evdev) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close releases the grab and closes the device.
func (e *Evdev) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.grabbed {
		zero := int32(0)
		_ = ioctl(e.fd, evioCGrab(), unsafe.Pointer(&zero))
	}
	return unix.Close(e.fd)
}

// Discover returns the first /dev/input/event* node that reports
// multitouch slots.
func Discover(ctx context.Context) (string, error) {
	matches, err := filepath.Glob(filepath.Join(inputDir, "event*"))
	if err != nil {
		return "", err
	}
	sort.Slice(matches, func(i, j int) bool { return eventNumber(matches[i]) < eventNumber(matches[j]) })

	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err != nil {
			continue
		}
		ok := isMultitouch(fd)
		_ = unix.Close(fd)
		if ok {
			return path, nil
		}
	}
	return "", ErrNoDevice
}

func eventNumber(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "event"))
	if err != nil {
		return math.MaxInt
	}
	return n
}

package device

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/touchgest/internal/domain/model"
)

// ScriptEvent is one touch event as written in a replay script.
type ScriptEvent struct {
	Kind string  `koanf:"kind"`
	Slot int     `koanf:"slot"`
	X    float64 `koanf:"x"`
	Y    float64 `koanf:"y"`
	Time uint32  `koanf:"time"`
}

type scriptFile struct {
	Batches [][]ScriptEvent `koanf:"batches"`
}

// Script replays prepared batches of touch events.
type Script struct {
	batches [][]model.TouchEvent
	next    int
	closed  bool
}

// NewScript creates a source that yields batches in order and then io.EOF.
func NewScript(batches [][]model.TouchEvent) *Script {
	cp := make([][]model.TouchEvent, len(batches))
	for i, b := range batches {
		cp[i] = append([]model.TouchEvent(nil), b...)
	}
	return &Script{batches: cp}
}

// LoadScript reads a YAML replay script:
//
//	batches:
//	  - - {kind: down, slot: 0, x: 995, y: 300, time: 0}
//	  - - {kind: motion, slot: 0, x: 850, y: 305, time: 50}
//	  - - {kind: up, slot: 0, time: 60}
func LoadScript(path string) (*Script, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScript, path, err)
	}

	var sf scriptFile
	if err := k.UnmarshalWithConf("", &sf, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScript, path, err)
	}

	batches := make([][]model.TouchEvent, len(sf.Batches))
	for i, raw := range sf.Batches {
		batches[i] = make([]model.TouchEvent, len(raw))
		for j, se := range raw {
			ev, err := se.event()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: batch %d event %d: %w", ErrInvalidScript, path, i, j, err)
			}
			batches[i][j] = ev
		}
	}
	return &Script{batches: batches}, nil
}

func (se ScriptEvent) event() (model.TouchEvent, error) {
	kind, err := parseKind(se.Kind)
	if err != nil {
		return model.TouchEvent{}, err
	}
	return model.TouchEvent{
		Kind:     kind,
		Slot:     se.Slot,
		Position: model.Point{X: se.X, Y: se.Y},
		Time:     se.Time,
	}, nil
}

func parseKind(s string) (model.EventKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down":
		return model.EventDown, nil
	case "motion":
		return model.EventMotion, nil
	case "up":
		return model.EventUp, nil
	case "cancel":
		return model.EventCancel, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

// Len returns the number of batches in the script.
func (s *Script) Len() int { return len(s.batches) }

// Next returns the next batch, or io.EOF after the last one.
func (s *Script) Next(ctx context.Context) ([]model.TouchEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, ErrClosed
	}
	if s.next >= len(s.batches) {
		return nil, io.EOF
	}
	b := s.batches[s.next]
	s.next++
	return append([]model.TouchEvent(nil), b...), nil
}

// Close stops the script.
func (s *Script) Close() error {
	s.closed = true
	return nil
}

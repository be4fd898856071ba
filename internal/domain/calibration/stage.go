package calibration

// Stage is one step of the calibration protocol.
type Stage uint8

// Calibration stages. StageDone is terminal.
const (
	StageTop Stage = iota
	StageRight
	StageBottom
	StageLeft
	StageDone
)

// order lists every edge stage exactly once, in the order they are visited.
var order = [...]Stage{StageTop, StageRight, StageBottom, StageLeft}

// next returns the stage that follows s, or StageDone after the last edge.
func next(s Stage) Stage {
	for i, st := range order {
		if st == s && i+1 < len(order) {
			return order[i+1]
		}
	}
	return StageDone
}

// String returns the lower-case stage name.
func (s Stage) String() string {
	switch s {
	case StageTop:
		return "top"
	case StageRight:
		return "right"
	case StageBottom:
		return "bottom"
	case StageLeft:
		return "left"
	default:
		return "done"
	}
}

// Label is the human-readable prompt shown to the operator for the stage.
func (s Stage) Label() string {
	switch s {
	case StageTop:
		return "Top edge"
	case StageRight:
		return "Right edge"
	case StageBottom:
		return "Bottom edge"
	case StageLeft:
		return "Left edge"
	default:
		return "Finished calibrating"
	}
}

// horizontal reports whether the stage samples the X coordinate.
func (s Stage) horizontal() bool {
	return s == StageLeft || s == StageRight
}

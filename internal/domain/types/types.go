// Package types contains read shapes shared between the service and the
// status API.
package types

// Phase names the mode the recognition loop is in.
type Phase string

// Loop phases.
const (
	PhaseStarting    Phase = "starting"
	PhaseCalibrating Phase = "calibrating"
	PhaseRecognizing Phase = "recognizing"
	PhaseStopped     Phase = "stopped"
)

// Bounds is the JSON form of the calibrated screen rectangle.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Stats is a snapshot of the daemon state served on /stats.
type Stats struct {
	Phase            Phase   `json:"phase"`
	Device           string  `json:"device,omitempty"`
	CalibrationStage string  `json:"calibration_stage,omitempty"`
	Bounds           *Bounds `json:"bounds,omitempty"`
	Rules            int     `json:"rules"`
	SlotsDown        int     `json:"slots_down"`
	Gestures         int64   `json:"gestures"`
	Matched          int64   `json:"matched"`
	QueueLength      int     `json:"queue_length"`
	QueueCapacity    int     `json:"queue_capacity"`
	ActionsExecuted  int64   `json:"actions_executed"`
	ActionsFailed    int64   `json:"actions_failed"`
	ActionsDropped   int64   `json:"actions_dropped"`
	Workers          int     `json:"workers"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

package replay

import "time"

// Config holds configuration for one replay run.
type Config struct {
	ScriptPath         string        // YAML event script to replay
	RulesPath          string        // gesture rule file
	BoundsPath         string        // calibration file; written when the script calibrates
	Exec               bool          // run matched commands instead of only printing them
	Shell              string        // shell used with Exec
	Timeout            time.Duration // per-command timeout used with Exec
	MinEdgeDistance    float64       // minimum border swipe travel
	CalibrationSamples int           // swipes per edge when the script calibrates
}

// Summary holds the outcome of a replay run.
type Summary struct {
	Batches   int
	Gestures  int64
	Matched   int64
	Executed  int64
	Failed    int64
	Dropped   int64
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

package calibration

import "errors"

// Sentinel kinds for calibration errors.
var (
	ErrMultipleFingers = errors.New("more than one finger used during calibration")
	ErrCalibrationDone = errors.New("calibration already finished")
	ErrInvalidBounds   = errors.New("calibrated bounds are empty")
)

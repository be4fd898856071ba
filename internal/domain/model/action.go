package model

import "time"

// ActionJob is a matched rule action waiting to be executed.
type ActionJob struct {
	ID        string
	Gesture   Gesture
	Command   string
	CreatedAt time.Time
}

package form

import "time"

// Clock schedules the controller's timers: the slug-check debounce and the
// reset of the copied indicator.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending call scheduled by a Clock.
type Timer interface {
	// Stop prevents the call from running. It reports false if the call
	// already ran or was stopped before.
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

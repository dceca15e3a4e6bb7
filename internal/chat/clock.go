package chat

import "time"

// Timer is a cancelable scheduled call.
type Timer interface {
	Stop() bool
}

// Clock is the simulated backend's time seam. Production uses the system
// clock; tests substitute a manual clock and advance virtual time instead of
// sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

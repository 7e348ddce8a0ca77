package session

import "time"

// Timer is the handle returned by Clock.AfterFunc. Stop reports whether the
// call prevented the timer from firing.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time and deferred execution so expiry scheduling is
// deterministic under test.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

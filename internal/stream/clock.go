package stream

import "time"

// Clock schedules reconnect timers. Production code uses RealClock; tests
// inject a fake that fires timers only when advanced.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f after d has elapsed. The returned Timer cancels
	// the call if it has not fired yet.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending call.
type Timer interface {
	// Stop prevents the call from firing. Returns false if it already
	// fired or was stopped.
	Stop() bool
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

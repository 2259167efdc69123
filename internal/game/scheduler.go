package game

import "time"

// Timer is a pending deferred call that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed. Implementations must call f on
// another goroutine (or later, from a test driver), never from inside
// AfterFunc itself.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// ClockScheduler schedules on the wall clock with time.AfterFunc.
type ClockScheduler struct{}

func (ClockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

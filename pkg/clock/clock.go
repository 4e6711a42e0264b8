// Package clock provides an injectable time source so that timeouts can be
// driven deterministically in tests.
package clock

import "time"

// Clock abstracts the time operations used by the bot.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for d, then calls f in its own goroutine (real) or
	// synchronously during Advance (fake).
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the Timer from firing. It returns false if the timer
	// has already fired or been stopped.
	Stop() bool
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

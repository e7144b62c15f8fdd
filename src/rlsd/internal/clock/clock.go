package clock

import (
	"time"
)

// Clock is an interface that abstracts the functionality for measuring and displaying time.
type Clock interface {
	// Now returns the current local time.
	Now() time.Time
	// Sleep pauses the current goroutine for at least the duration d. A negative or zero duration causes Sleep to return immediately.
	Sleep(duration time.Duration)
}

type clock struct{}

// New creates a new instance of Clock.
func New() Clock {
	return clock{}
}

func (clock) Now() time.Time {
	return time.Now()
}

func (clock) Sleep(duration time.Duration) {
	time.Sleep(duration)
}

// Fixed is a Clock frozen at a point in time. Sleep advances it instead of blocking.
type Fixed struct {
	T time.Time
}

// Now returns the frozen time.
func (f *Fixed) Now() time.Time {
	return f.T
}

// Sleep moves the frozen time forward.
func (f *Fixed) Sleep(duration time.Duration) {
	if duration > 0 {
		f.T = f.T.Add(duration)
	}
}

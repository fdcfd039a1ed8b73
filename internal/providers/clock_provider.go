package providers

import "github.com/jonboulle/clockwork"

// NewClockProvider returns the wall clock. Tests substitute clockwork.NewFakeClock.
func NewClockProvider() clockwork.Clock {
	return clockwork.NewRealClock()
}

package action

import "time"

// Clock supplies the current time. Staging, expiry and sweeping all read
// time through a Clock so tests can move it by hand.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

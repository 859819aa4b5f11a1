package market_hours

import "time"

// Clock abstracts the current time so cache windowing can be tested
// deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock backed by time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Test use only.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.T
}

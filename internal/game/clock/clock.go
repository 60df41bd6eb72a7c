// Package clock provides the logical time a battle is scheduled against.
package clock

import "math"

// Clock is a monotonically advancing logical time. It has no relation to
// wall-clock time. The zero value is a clock at time 0.
type Clock struct {
	now float64
}

// New returns a clock at time 0.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
//
// Postcondition: result >= 0.
func (c *Clock) Now() float64 {
	return c.now
}

// Advance moves time forward by d. Non-positive, NaN and infinite
// durations are ignored.
func (c *Clock) Advance(d float64) {
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return
	}
	c.now += d
}

// Reset returns the clock to time 0.
func (c *Clock) Reset() {
	c.now = 0
}

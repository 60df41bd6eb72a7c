package clock_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonfighter/internal/game/clock"
)

func TestClock_AdvanceAndReset(t *testing.T) {
	c := clock.New()
	assert.Equal(t, 0.0, c.Now())
	c.Advance(1.5)
	c.Advance(0.25)
	assert.InDelta(t, 1.75, c.Now(), 1e-12)
	c.Reset()
	assert.Equal(t, 0.0, c.Now())
}

func TestClock_IgnoresInvalidDurations(t *testing.T) {
	var c clock.Clock
	c.Advance(-3)
	c.Advance(0)
	c.Advance(math.NaN())
	c.Advance(math.Inf(1))
	assert.Equal(t, 0.0, c.Now())
}

func TestClock_Monotonic_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := clock.New()
		prev := c.Now()
		for _, d := range rapid.SliceOf(rapid.Float64Range(-10, 10)).Draw(rt, "deltas") {
			c.Advance(d)
			assert.GreaterOrEqual(rt, c.Now(), prev)
			prev = c.Now()
		}
	})
}

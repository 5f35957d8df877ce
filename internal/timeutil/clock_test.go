package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}

	before := time.Now()
	now := c.Now()
	assert.False(t, now.Before(before))
	assert.GreaterOrEqual(t, c.Since(before), time.Duration(0))
}

func TestMockClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	t.Run("now returns start", func(t *testing.T) {
		assert.Equal(t, start, c.Now())
		assert.Equal(t, time.Duration(0), c.Since(start))
	})

	t.Run("advance moves forward", func(t *testing.T) {
		c.Advance(1500 * time.Millisecond)
		assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())
		assert.Equal(t, 1500*time.Millisecond, c.Since(start))
	})

	t.Run("set jumps to time", func(t *testing.T) {
		target := start.Add(time.Hour)
		c.Set(target)
		assert.Equal(t, target, c.Now())
	})

	t.Run("implements Clock", func(t *testing.T) {
		var _ Clock = (*MockClock)(nil)
	})
}

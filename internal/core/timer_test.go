package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestStopwatchLaps(t *testing.T) {
	clk := &fakeClock{t: time.Unix(100, 0)}
	sw := newStopwatch(clk.now)
	clk.t = clk.t.Add(30 * time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, sw.Lap())
	clk.t = clk.t.Add(5 * time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, sw.Lap())
	assert.Equal(t, 35*time.Millisecond, sw.Total())
}

func TestCadenceFiresOncePerInterval(t *testing.T) {
	clk := &fakeClock{t: time.Unix(100, 0)}
	c := NewCadence(100 * time.Millisecond)
	c.now = clk.now

	assert.True(t, c.Due())
	assert.False(t, c.Due())
	clk.t = clk.t.Add(99 * time.Millisecond)
	assert.False(t, c.Due())
	clk.t = clk.t.Add(time.Millisecond)
	assert.True(t, c.Due())
}

func TestCadenceDefaultInterval(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, NewCadence(0).every)
}

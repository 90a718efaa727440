package core

import "time"

// Stopwatch measures consecutive laps, used for per-stage timings.
type Stopwatch struct {
	start time.Time
	lap   time.Time
	now   func() time.Time
}

// NewStopwatch starts a stopwatch on the wall clock.
func NewStopwatch() *Stopwatch {
	return newStopwatch(time.Now)
}

func newStopwatch(now func() time.Time) *Stopwatch {
	t := now()
	return &Stopwatch{start: t, lap: t, now: now}
}

// Lap returns the time since the previous lap and starts a new one.
func (s *Stopwatch) Lap() time.Duration {
	t := s.now()
	d := t.Sub(s.lap)
	s.lap = t
	return d
}

// Total returns the time since the stopwatch started.
func (s *Stopwatch) Total() time.Duration { return s.now().Sub(s.start) }

// Cadence reports when an auto-advancing loop should take its next step.
type Cadence struct {
	every time.Duration
	last  time.Time
	now   func() time.Time
}

// NewCadence fires at most once per interval. Non-positive intervals fall
// back to 250ms.
func NewCadence(every time.Duration) *Cadence {
	if every <= 0 {
		every = 250 * time.Millisecond
	}
	return &Cadence{every: every, now: time.Now}
}

// Due reports whether the interval elapsed since the last firing.
func (c *Cadence) Due() bool {
	t := c.now()
	if c.last.IsZero() || t.Sub(c.last) >= c.every {
		c.last = t
		return true
	}
	return false
}

package util

import (
	"sync"
	"time"
)

// Clock returns the current instant. Components take a Clock instead of
// calling time.Now so the calendar day can be pinned in tests.
type Clock func() time.Time

// SystemClock reads wall time in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// Window is an inclusive [From, To] range of instants.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside w, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// DayWindow returns the calendar day of now in now's location:
// local midnight through 23:59:59.999.
func DayWindow(now time.Time) Window {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return Window{From: start, To: end}
}

// ManualClock is a settable clock for tests and tooling.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

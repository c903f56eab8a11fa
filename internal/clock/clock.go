package clock

import "time"

// Clock stamps journal entries and picks the daily log file.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time in UTC so journal entries compare across
// machines.
type RealClock struct{}

func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Since returns the time elapsed on c since t.
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// FakeClock is a manually driven Clock. With a step set, every Now call
// advances the clock afterwards, so consecutive readings differ.
type FakeClock struct {
	current time.Time
	step    time.Duration
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

func (c *FakeClock) Now() time.Time {
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

func (c *FakeClock) Set(t time.Time) {
	c.current = t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// SetStep sets how far each Now call advances the clock. Zero freezes it.
func (c *FakeClock) SetStep(d time.Duration) {
	c.step = d
}

package core

// Clock is the monotonic millisecond time source.
// NowMS must never go backwards.
type Clock interface {
	NowMS() uint64
}

// ClockFunc adapts a plain function to the Clock interface
type ClockFunc func() uint64

// NowMS calls f
func (f ClockFunc) NowMS() uint64 {
	return f()
}

// ManualClock is a Clock that only moves when told to.
// Used by tests and host-side simulation.
type ManualClock struct {
	now uint64
}

// NewManualClock returns a clock starting at the given time
func NewManualClock(startMS uint64) *ManualClock {
	return &ManualClock{now: startMS}
}

// NowMS returns the current manual time
func (c *ManualClock) NowMS() uint64 {
	return c.now
}

// Set moves the clock to ms. Earlier values are ignored to keep it monotonic.
func (c *ManualClock) Set(ms uint64) {
	if ms > c.now {
		c.now = ms
	}
}

// Advance moves the clock forward by ms
func (c *ManualClock) Advance(ms uint64) {
	c.now += ms
}

// MSToSeconds converts a millisecond duration to seconds
func MSToSeconds(ms uint64) float64 {
	return float64(ms) / 1000.0
}

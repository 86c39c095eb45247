package ride

import "math"

// PulseCounter accumulates wheel sensor pulses between statistics ticks
type PulseCounter struct {
	count uint32
}

// Record counts one pulse. The counter saturates instead of wrapping.
func (c *PulseCounter) Record() {
	if c.count < math.MaxUint32 {
		c.count++
	}
}

// Count returns the pulses recorded so far in this period
func (c *PulseCounter) Count() uint32 {
	return c.count
}

// TakeAndReset returns the pulses recorded in this period and starts a new one
func (c *PulseCounter) TakeAndReset() uint32 {
	n := c.count
	c.count = 0
	return n
}

// Package display selects what the tachometer shows and replays the
// selection onto a core.Renderer.
package display

// Mode is one of the display screens
type Mode uint8

const (
	All      Mode = iota // speed, average, distance and time as small lines
	Speed                // current speed, large
	Distance             // distance, large
	AvgSpeed             // average speed, large

	modeCount
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case All:
		return "all"
	case Speed:
		return "speed"
	case Distance:
		return "distance"
	case AvgSpeed:
		return "avg-speed"
	default:
		return "unknown"
	}
}

// Next returns the successor in the cycle All -> Speed -> Distance -> AvgSpeed -> All
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

// Controller owns the current display mode
type Controller struct {
	mode Mode
}

// NewController returns a controller showing All
func NewController() *Controller {
	return &Controller{mode: All}
}

// Mode returns the current mode
func (c *Controller) Mode() Mode {
	return c.mode
}

// Advance moves to the next mode in the cycle
func (c *Controller) Advance() {
	c.mode = c.mode.Next()
}

// Reset forces the mode back to All
func (c *Controller) Reset() {
	c.mode = All
}

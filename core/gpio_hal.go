package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// Level is the logical level read from a digital input.
// Inputs are configured with pull-ups, so High is the idle level
// and Low means the button (or wheel sensor contact) is closed.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// String returns "high" or "low"
func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// GPIODriver is the abstract digital input interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// ReadPin reads the current pin state (true = high)
	ReadPin(pin GPIOPin) bool
}

// ReadLevel samples a pin through the driver and returns it as a Level
func ReadLevel(d GPIODriver, pin GPIOPin) Level {
	return Level(d.ReadPin(pin))
}

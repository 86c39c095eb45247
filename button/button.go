// Package button implements a polled debounce state machine for active-low
// push buttons. One Debouncer is owned per physical button and is advanced
// once per main loop iteration with the raw pin level and the loop time.
package button

import "tachometer/core"

// Event is the outcome of one Update call
type Event uint8

const (
	None      Event = iota // nothing happened this tick
	PressEdge              // settled High->Low transition (button pressed)
	LongHold               // pressed continuously for longer than Config.Hold
)

// String returns the event name
func (e Event) String() string {
	switch e {
	case None:
		return "none"
	case PressEdge:
		return "press"
	case LongHold:
		return "long-hold"
	default:
		return "unknown"
	}
}

// Default timing in milliseconds
const (
	DefaultDebounceMS = 10
	DefaultHoldMS     = 2000
)

// Config parameterizes a Debouncer
type Config struct {
	DebounceMS uint64 // Level must be stable for longer than this to be accepted
	HoldMS     uint64 // Press duration that produces LongHold
	DetectHold bool   // Emit LongHold events (only the reset button does)
}

// State is the debounce memory of one button
type State struct {
	Steady          core.Level // Last accepted level
	Flickering      core.Level // Last raw level seen
	LastFlickerTime uint64     // Start of the current bounce window
	HoldStartTime   uint64     // Start of the current hold measurement
	holdReported    bool
}

// Debouncer turns noisy raw samples into discrete events
type Debouncer struct {
	cfg   Config
	state State
}

// New creates a debouncer. Both levels start at the pull-up idle level,
// so a button reading High at boot produces no event.
func New(cfg Config) *Debouncer {
	if cfg.DebounceMS == 0 {
		cfg.DebounceMS = DefaultDebounceMS
	}
	if cfg.HoldMS == 0 {
		cfg.HoldMS = DefaultHoldMS
	}
	return &Debouncer{
		cfg: cfg,
		state: State{
			Steady:     core.High,
			Flickering: core.High,
		},
	}
}

// Update advances the state machine with one raw sample taken at nowMS
func (d *Debouncer) Update(level core.Level, nowMS uint64) Event {
	s := &d.state

	if level != s.Flickering {
		s.LastFlickerTime = nowMS
		s.HoldStartTime = nowMS
		s.Flickering = level
		s.holdReported = false
	}

	event := None

	// Long hold is judged against the steady level from before this
	// tick's debounce acceptance.
	if d.cfg.DetectHold && !s.holdReported &&
		s.Steady == core.Low && level == core.Low &&
		core.Elapsed(s.HoldStartTime, nowMS) > d.cfg.HoldMS {
		s.holdReported = true
		event = LongHold
	}

	if core.Elapsed(s.LastFlickerTime, nowMS) > d.cfg.DebounceMS {
		if s.Steady == core.High && level == core.Low {
			event = PressEdge
		}
		s.Steady = level
	}

	return event
}

// State returns a copy of the debounce memory
func (d *Debouncer) State() State {
	return d.state
}

// Pressed reports whether the accepted level is the pressed (Low) level
func (d *Debouncer) Pressed() bool {
	return d.state.Steady == core.Low
}

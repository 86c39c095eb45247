// Package tacho runs the tachometer main loop: it samples both buttons and
// the clock once per iteration, advances the debounce and display state
// machines, and performs the periodic statistics and render work.
package tacho

import (
	"errors"
	"io"

	"tachometer/button"
	"tachometer/core"
	"tachometer/display"
	"tachometer/persist"
	"tachometer/protocol"
	"tachometer/ride"
)

var (
	ErrMissingDependency = errors.New("tachometer: missing dependency")
	ErrNotStarted        = errors.New("tachometer: not started")
)

// Deps are the hardware capabilities the loop runs against
type Deps struct {
	GPIO     core.GPIODriver
	Clock    core.Clock
	Store    core.KVStore
	Renderer core.Renderer

	// Telemetry receives one framed report per statistics period (optional)
	Telemetry io.Writer
}

// Tachometer owns all loop state. It is not safe for concurrent use;
// everything runs on the one cooperative loop.
type Tachometer struct {
	cfg       Config
	gpio      core.GPIODriver
	clock     core.Clock
	renderer  core.Renderer
	bridge    *persist.Bridge
	telemetry io.Writer

	modeButton  *button.Debouncer
	pulseButton *button.Debouncer
	pulses      ride.PulseCounter
	stats       ride.Stats
	strings     ride.Strings
	display     *display.Controller

	statsPeriod  core.Period
	renderPeriod core.Period
	rendered     bool
	started      bool

	// Telemetry state
	frame      *protocol.ScratchOutput
	seq        uint8
	lastPulses uint32
	flags      uint8
}

// New creates a tachometer. Start must be called before Step.
func New(cfg Config, deps Deps) (*Tachometer, error) {
	if deps.GPIO == nil || deps.Clock == nil || deps.Store == nil || deps.Renderer == nil {
		return nil, ErrMissingDependency
	}
	applyDefaults(&cfg)

	return &Tachometer{
		cfg:       cfg,
		gpio:      deps.GPIO,
		clock:     deps.Clock,
		renderer:  deps.Renderer,
		bridge:    persist.NewBridge(deps.Store),
		telemetry: deps.Telemetry,
		modeButton: button.New(button.Config{
			DebounceMS: cfg.DebounceMS,
			HoldMS:     cfg.HoldMS,
			DetectHold: true,
		}),
		pulseButton: button.New(button.Config{
			DebounceMS: cfg.DebounceMS,
		}),
		display:      display.NewController(),
		statsPeriod:  core.NewPeriod(cfg.StatsPeriodMS, 0),
		renderPeriod: core.NewPeriod(cfg.RenderPeriodMS, 0),
		frame:        protocol.NewScratchOutput(),
	}, nil
}

// Start configures the inputs and restores the persisted totals.
// A persistence init failure is returned and the loop must not run.
func (t *Tachometer) Start() error {
	for _, pin := range []core.GPIOPin{t.cfg.ModePin, t.cfg.PulsePin} {
		if err := t.gpio.ConfigureInputPullUp(pin); err != nil {
			return err
		}
	}

	st, err := t.bridge.Load()
	if err != nil {
		core.ErrorPrintln("[tacho] " + err.Error())
		return err
	}
	t.stats = st.Stats()
	t.strings = t.stats.Format()

	now := t.clock.NowMS()
	t.statsPeriod.Restart(now)
	t.renderPeriod.Restart(now)
	t.started = true

	core.DebugPrintln("[tacho] started at " + core.Utoa(now) + "ms, elapsed=" + core.Utoa(uint64(t.stats.ElapsedS)) + "s")
	return nil
}

// Run executes Step forever, calling yield after every iteration
func (t *Tachometer) Run(yield func()) error {
	if !t.started {
		return ErrNotStarted
	}
	for {
		t.Step()
		if yield != nil {
			yield()
		}
	}
}

// Step runs one loop iteration. The statistics tick always runs before
// button handling, so a reset detected in the same iteration as a period
// rollover persists the pre-reset totals first.
func (t *Tachometer) Step() {
	if !t.started {
		return
	}

	// Sample inputs and time once
	now := t.clock.NowMS()
	modeLevel := core.ReadLevel(t.gpio, t.cfg.ModePin)
	pulseLevel := core.ReadLevel(t.gpio, t.cfg.PulsePin)

	if t.statsPeriod.Due(now) {
		t.periodTick(now)
	}

	switch t.modeButton.Update(modeLevel, now) {
	case button.LongHold:
		t.Reset()
	case button.PressEdge:
		t.display.Advance()
	}

	if t.pulseButton.Update(pulseLevel, now) == button.PressEdge {
		t.pulses.Record()
	}

	if !t.rendered || t.renderPeriod.Due(now) {
		t.render(now)
	}
}

func (t *Tachometer) periodTick(now uint64) {
	pulses := t.pulses.TakeAndReset()
	t.stats.Tick(pulses, core.MSToSeconds(t.cfg.StatsPeriodMS), t.cfg.CircumferenceM)
	t.strings = t.stats.Format()

	if err := t.bridge.Save(persist.FromStats(t.stats)); err != nil {
		t.flags |= protocol.FlagStoreFail
	}

	t.lastPulses = pulses
	t.sendReport()
	t.statsPeriod.Restart(now)
}

// Reset zeroes the statistics, returns the display to All and persists
// the zeroed totals.
func (t *Tachometer) Reset() {
	t.stats.Reset()
	t.display.Reset()
	t.strings = t.stats.Format()
	t.flags |= protocol.FlagReset

	// Failure is already logged and retried on the next period
	_ = t.bridge.Save(persist.FromStats(t.stats))
	core.DebugPrintln("[tacho] statistics reset")
}

func (t *Tachometer) render(now uint64) {
	if err := t.display.View(t.strings).Draw(t.renderer); err != nil {
		core.ErrorPrintln("[tacho] display flush failed: " + err.Error())
	}
	t.rendered = true
	t.renderPeriod.Restart(now)
}

// Stats returns the current statistics
func (t *Tachometer) Stats() ride.Stats {
	return t.stats
}

// Strings returns the text last derived from the statistics
func (t *Tachometer) Strings() ride.Strings {
	return t.strings
}

// Mode returns the current display mode
func (t *Tachometer) Mode() display.Mode {
	return t.display.Mode()
}

// PendingPulses returns the pulses counted in the current period
func (t *Tachometer) PendingPulses() uint32 {
	return t.pulses.Count()
}

package tacho

import (
	"tachometer/button"
	"tachometer/core"
	"tachometer/ride"
)

// Config holds the tunables of the tachometer. All values are fixed at
// build time; DefaultConfig returns the stock wheel and timing.
type Config struct {
	CircumferenceM float64 // Wheel circumference in metres
	DebounceMS     uint64  // Button debounce window
	HoldMS         uint64  // Long press duration that resets the statistics
	StatsPeriodMS  uint64  // Statistics cadence
	RenderPeriodMS uint64  // Display refresh cadence

	ModePin  core.GPIOPin // Button 1: short press cycles the display, long press resets
	PulsePin core.GPIOPin // Button 2: wheel sensor pulse input
}

// DefaultConfig returns the stock configuration
func DefaultConfig() Config {
	return Config{
		CircumferenceM: ride.DefaultCircumferenceM,
		DebounceMS:     button.DefaultDebounceMS,
		HoldMS:         button.DefaultHoldMS,
		StatsPeriodMS:  1000,
		RenderPeriodMS: 500,
		ModePin:        26,
		PulsePin:       14,
	}
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.CircumferenceM <= 0 {
		cfg.CircumferenceM = def.CircumferenceM
	}
	if cfg.DebounceMS == 0 {
		cfg.DebounceMS = def.DebounceMS
	}
	if cfg.HoldMS == 0 {
		cfg.HoldMS = def.HoldMS
	}
	if cfg.StatsPeriodMS == 0 {
		cfg.StatsPeriodMS = def.StatsPeriodMS
	}
	if cfg.RenderPeriodMS == 0 {
		cfg.RenderPeriodMS = def.RenderPeriodMS
	}
}

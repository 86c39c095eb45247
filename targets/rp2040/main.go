//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"tachometer/core"
	"tachometer/persist"
	"tachometer/tacho"
)

// Board wiring
const (
	pinModeButton = machine.GPIO26
	pinPulse      = machine.GPIO14

	// loopYield is the pause between main loop iterations
	loopYield = time.Millisecond
)

func main() {
	// Disable watchdog on boot to clear any previous state
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	InitUSB()
	InitDebugUART()
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(debugEnabled)

	renderer, err := NewOLEDRenderer()
	if err != nil {
		core.ErrorPrintln("[main] display init failed: " + err.Error())
		fatalBlink()
	}
	splash(renderer)

	store, err := persist.OpenFlashStore(machine.Flash, persist.DefaultRegionBlocks)
	if err != nil {
		core.ErrorPrintln("[main] " + err.Error())
		fatalBlink()
	}

	cfg := tacho.DefaultConfig()
	cfg.ModePin = core.GPIOPin(pinModeButton)
	cfg.PulsePin = core.GPIOPin(pinPulse)

	tach, err := tacho.New(cfg, tacho.Deps{
		GPIO:      NewRPGPIODriver(),
		Clock:     core.ClockFunc(UptimeMS),
		Store:     store,
		Renderer:  renderer,
		Telemetry: NewUSBTelemetry(),
	})
	if err != nil {
		core.ErrorPrintln("[main] " + err.Error())
		fatalBlink()
	}
	if err := tach.Start(); err != nil {
		fatalBlink()
	}

	tach.Run(func() {
		time.Sleep(loopYield)
	})
}

// fatalBlink flashes the LED rapidly forever to indicate a boot failure
func fatalBlink() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}

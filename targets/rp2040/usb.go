//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tachometer/tacho"
)

// InitUSB initializes USB CDC serial (machine.Serial is USB CDC on RP2040)
func InitUSB() {
	_ = machine.Serial.Configure(machine.UARTConfig{})
}

// NewUSBTelemetry returns the telemetry writer over USB CDC. A missing
// host never blocks the main loop.
func NewUSBTelemetry() *tacho.LinkWriter {
	return tacho.NewLinkWriter(machine.Serial)
}

//go:build !wasm

package serial

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// tarmPort is a Port backed by github.com/tarm/serial
type tarmPort struct {
	*serial.Port
	device string
}

// Open opens the device named in cfg. With a non-zero ReadTimeout a read
// that sees no data returns (0, io.EOF) once the timeout passes.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Device == "" {
		return nil, fmt.Errorf("no serial device given")
	}

	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &tarmPort{Port: p, device: cfg.Device}, nil
}

// Close releases the device
func (p *tarmPort) Close() error {
	if err := p.Port.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", p.device, err)
	}
	return nil
}

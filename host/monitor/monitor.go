// Package monitor reads telemetry frames from a tachometer and decodes the
// statistics reports they carry.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tachometer/host/serial"
	"tachometer/protocol"
)

// Counters summarizes the health of the telemetry stream
type Counters struct {
	Reports uint32 // Reports decoded
	Unknown uint32 // Frames with an unknown or malformed payload
	Lost    uint32 // Frames missing according to the sequence numbers
	Resyncs uint32 // Times the decoder lost frame sync
}

// Monitor is a connection to a tachometer's telemetry port
type Monitor struct {
	port    serial.Port
	decoder *protocol.Decoder
	log     *slog.Logger

	readBuf  []byte
	counters Counters
	lastSeq  uint8
	seenSeq  bool
}

// New creates a monitor over an already open port
func New(port serial.Port, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Monitor{
		port:    port,
		decoder: protocol.NewDecoder(),
		log:     log,
		readBuf: make([]byte, protocol.MessageMax),
	}
}

// Connect opens the serial device and creates a monitor on it
func Connect(cfg *serial.Config, log *slog.Logger) (*Monitor, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return New(port, log), nil
}

// Close closes the port
func (m *Monitor) Close() error {
	return m.port.Close()
}

// Counters returns the stream counters
func (m *Monitor) Counters() Counters {
	c := m.counters
	c.Resyncs = m.decoder.Dropped
	return c
}

// Poll performs one read and returns the reports completed by it.
// A read timeout with no data returns no reports and no error. The serial
// port reports a timeout as a zero-length read with io.EOF.
func (m *Monitor) Poll() ([]protocol.Report, error) {
	n, err := m.port.Read(m.readBuf)
	if n > 0 {
		m.decoder.Write(m.readBuf[:n])
	}
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return m.drain(), err
}

// Run polls until stop is closed or the port fails, passing every report
// to handle. Read timeouts keep polling.
func (m *Monitor) Run(stop <-chan struct{}, handle func(protocol.Report)) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		reports, err := m.Poll()
		for _, r := range reports {
			handle(r)
		}
		if err != nil {
			return fmt.Errorf("telemetry read failed: %w", err)
		}
		if len(reports) == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (m *Monitor) drain() []protocol.Report {
	var reports []protocol.Report
	for {
		frame, ok := m.decoder.Next()
		if !ok {
			return reports
		}
		m.trackSeq(frame.Seq)

		r, err := protocol.DecodeReport(frame.Payload)
		if err != nil {
			m.counters.Unknown++
			m.log.Warn("undecodable frame", "seq", frame.Seq, "len", len(frame.Payload), "error", err)
			continue
		}
		m.counters.Reports++
		m.log.Debug("report", "seq", frame.Seq, "elapsed", r.ElapsedS, "pulses", r.Pulses)
		reports = append(reports, r)
	}
}

func (m *Monitor) trackSeq(seq uint8) {
	if m.seenSeq {
		expected := (m.lastSeq + 1) & protocol.MessageSeqMask
		if seq != expected {
			gap := (seq - expected) & protocol.MessageSeqMask
			m.counters.Lost += uint32(gap)
			m.log.Warn("telemetry frames lost", "expected", expected, "got", seq, "lost", gap)
		}
	}
	m.lastSeq = seq
	m.seenSeq = true
}

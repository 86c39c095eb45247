package tacho

import (
	"math"

	"tachometer/core"
	"tachometer/persist"
	"tachometer/protocol"
)

// report builds the telemetry report for the current statistics
func (t *Tachometer) report() protocol.Report {
	st := persist.FromStats(t.stats)
	return protocol.Report{
		ElapsedS:      t.stats.ElapsedS,
		DistanceMilli: st.DistanceScaled,
		SpeedCentiKMH: centi(t.stats.SpeedKMH),
		AvgCentiKMH:   centi(t.stats.AvgSpeedKMH),
		Pulses:        t.lastPulses,
		Mode:          uint8(t.display.Mode()),
		Flags:         t.flags,
	}
}

// sendReport writes one framed report to the telemetry writer, if any.
// Flags are cleared once a report carrying them has been written.
func (t *Tachometer) sendReport() {
	if t.telemetry == nil {
		return
	}

	t.frame.Reset()
	if err := protocol.EncodeReport(t.frame, t.seq, t.report()); err != nil {
		core.DebugPrintln("[tacho] report encode failed: " + err.Error())
		return
	}
	if _, err := t.telemetry.Write(t.frame.Result()); err != nil {
		core.DebugPrintln("[tacho] report write failed: " + err.Error())
		return
	}
	t.seq = (t.seq + 1) & protocol.MessageSeqMask
	t.flags = 0
}

func centi(v float64) uint32 {
	c := math.Round(v * 100)
	if c <= 0 {
		return 0
	}
	if c > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(c)
}

package monitor

import (
	"fmt"

	"tachometer/display"
	"tachometer/protocol"
	"tachometer/ride"
)

// FormatReport renders a report as one console line
func FormatReport(r protocol.Report) string {
	line := fmt.Sprintf("%s  spd %6.2f km/h  avg %6.2f km/h  dist %8.3f  pulses %3d  mode %s",
		ride.Clock(r.ElapsedS), r.SpeedKMH(), r.AvgKMH(), r.Distance(), r.Pulses, display.Mode(r.Mode))
	if r.Flags&protocol.FlagReset != 0 {
		line += "  [reset]"
	}
	if r.Flags&protocol.FlagStoreFail != 0 {
		line += "  [store failed]"
	}
	return line
}

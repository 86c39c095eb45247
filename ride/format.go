package ride

import (
	"strconv"

	"tachometer/core"
)

// Strings is the text derived from Stats for the display views
type Strings struct {
	Speed        string // "18.63"
	SpeedLine    string // " SPD: 18.63km/h"
	Distance     string // "0.01"
	DistanceLine string // "DIST: 0.01km"
	Avg          string // "18.63"
	AvgLine      string // " AVG: 18.63km/h"
	TimeLine     string // "TIME: 00:00:01"
}

// Format renders the stats as display strings
func (s Stats) Format() Strings {
	spd := fixed2(s.SpeedKMH)
	dist := fixed2(s.DistanceM)
	avg := fixed2(s.AvgSpeedKMH)

	return Strings{
		Speed:        spd,
		SpeedLine:    " SPD: " + spd + "km/h",
		Distance:     dist,
		DistanceLine: "DIST: " + dist + "km",
		Avg:          avg,
		AvgLine:      " AVG: " + avg + "km/h",
		TimeLine:     "TIME: " + Clock(s.ElapsedS),
	}
}

// Clock formats seconds as HH:MM:SS. Hours are not wrapped.
func Clock(seconds uint32) string {
	t := uint64(seconds)
	return core.Pad2(t/3600) + ":" + core.Pad2((t/60)%60) + ":" + core.Pad2(t%60)
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

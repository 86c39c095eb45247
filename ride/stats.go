// Package ride holds the ride statistics: pulse accumulation, the
// once-per-period speed/distance/average computation and the text shown
// on the display.
package ride

// Wheel and period defaults
const (
	DefaultCircumferenceM = 2.07 // Wheel circumference in metres
	DefaultPeriodS        = 1.0  // Statistics period in seconds

	msToKMH = 3.6

	// distanceDivisor scales each period's smoothed speed into the
	// distance accumulator. This is not speed * period: persisted
	// odometer values are in these units.
	distanceDivisor = 1000.0
)

// Stats is the ride state updated once per statistics period
type Stats struct {
	DistanceM   float64 // Accumulated distance (legacy scaling, see distanceDivisor)
	SpeedMS     float64 // Smoothed speed in m/s
	SpeedKMH    float64 // Smoothed speed in km/h
	AvgSpeedKMH float64 // Average speed over ElapsedS
	ElapsedS    uint32  // Number of statistics periods since the last reset

	// prevSpeedMS is the smoothed speed of the previous period, used
	// by the one-pole average in the next Tick.
	prevSpeedMS float64
}

// Restore creates stats from persisted totals. Speeds start at zero.
func Restore(distanceM float64, elapsedS uint32) Stats {
	s := Stats{
		DistanceM: distanceM,
		ElapsedS:  elapsedS,
	}
	s.AvgSpeedKMH = averageKMH(s.DistanceM, s.ElapsedS)
	return s
}

// StepResult is the output of one statistics period
type StepResult struct {
	InstantaneousMS float64
	SpeedMS         float64
	SpeedKMH        float64
}

// Step converts one period's pulses into the smoothed speed.
// instantaneous = pulses * circumference / period, then averaged with the
// previous period's smoothed speed.
func Step(pulses uint32, periodS, circumferenceM, prevSpeedMS float64) StepResult {
	if periodS <= 0 {
		periodS = DefaultPeriodS
	}
	inst := float64(pulses) * circumferenceM / periodS
	speed := (inst + prevSpeedMS) / 2
	return StepResult{
		InstantaneousMS: inst,
		SpeedMS:         speed,
		SpeedKMH:        speed * msToKMH,
	}
}

// Tick advances the statistics by one period.
// It is pure arithmetic: the same inputs always give the same stats.
func (s *Stats) Tick(pulses uint32, periodS, circumferenceM float64) StepResult {
	r := Step(pulses, periodS, circumferenceM, s.prevSpeedMS)

	s.SpeedMS = r.SpeedMS
	s.prevSpeedMS = r.SpeedMS
	s.DistanceM += r.SpeedMS / distanceDivisor
	s.SpeedKMH = r.SpeedKMH
	if s.ElapsedS < ^uint32(0) {
		s.ElapsedS++
	}
	s.AvgSpeedKMH = averageKMH(s.DistanceM, s.ElapsedS)

	return r
}

// Reset zeroes every statistic, including the smoothing memory
func (s *Stats) Reset() {
	*s = Stats{}
}

// PrevSpeedMS returns the smoothing memory carried into the next Tick
func (s *Stats) PrevSpeedMS() float64 {
	return s.prevSpeedMS
}

func averageKMH(distance float64, elapsedS uint32) float64 {
	if elapsedS == 0 {
		return 0
	}
	return distance / (float64(elapsedS) / 3600.0)
}

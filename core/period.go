package core

// Period tracks a fixed cadence inside the cooperative main loop.
// It never blocks: the loop asks Due on every iteration and calls Restart
// once the periodic work has run.
type Period struct {
	Length uint64 // Period length in milliseconds
	Start  uint64 // Time the current period started
}

// NewPeriod creates a period of the given length starting at startMS
func NewPeriod(lengthMS, startMS uint64) Period {
	return Period{Length: lengthMS, Start: startMS}
}

// Due reports whether strictly more than Length has elapsed since Start
func (p *Period) Due(nowMS uint64) bool {
	return Elapsed(p.Start, nowMS) > p.Length
}

// Restart begins a new period at nowMS.
// The next period is measured from the time the work actually ran, not
// from the ideal boundary, so late iterations stretch the period.
func (p *Period) Restart(nowMS uint64) {
	p.Start = nowMS
}

// Elapsed returns now - since, clamped to zero if the clock is behind
func Elapsed(since, now uint64) uint64 {
	if now < since {
		return 0
	}
	return now - since
}

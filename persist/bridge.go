// Package persist keeps the cumulative ride totals in a durable key-value
// store so distance and riding time survive power cycles.
package persist

import (
	"errors"
	"math"

	"tachometer/core"
	"tachometer/ride"
)

// Store layout
const (
	Namespace   = "tachometer"
	KeyDistance = "Distance"
	KeyTime     = "Time"

	// DistanceScale is the fixed point factor of the stored distance
	DistanceScale = 1000.0
)

// State is the durable projection of ride.Stats
type State struct {
	DistanceScaled int32 // distance x DistanceScale
	ElapsedS       int32
}

// FromStats converts ride statistics to their stored form.
// Distance is rounded to the nearest 1/1000 and clamped to the int32 range.
func FromStats(s ride.Stats) State {
	d := math.Round(s.DistanceM * DistanceScale)
	if d > math.MaxInt32 {
		d = math.MaxInt32
	} else if d < 0 {
		d = 0
	}
	e := s.ElapsedS
	if e > math.MaxInt32 {
		e = math.MaxInt32
	}
	return State{DistanceScaled: int32(d), ElapsedS: int32(e)}
}

// Distance returns the stored distance in the accumulator's units
func (st State) Distance() float64 {
	return float64(st.DistanceScaled) / DistanceScale
}

// Stats rebuilds ride statistics from the stored state.
// Negative values (never written by this firmware) are treated as zero.
func (st State) Stats() ride.Stats {
	d := st.DistanceScaled
	if d < 0 {
		d = 0
	}
	e := st.ElapsedS
	if e < 0 {
		e = 0
	}
	return ride.Restore(float64(d)/DistanceScale, uint32(e))
}

// Bridge loads and saves State through a core.KVStore
type Bridge struct {
	store core.KVStore
}

// NewBridge creates a bridge over an opened store
func NewBridge(store core.KVStore) *Bridge {
	return &Bridge{store: store}
}

// Load reads the persisted totals. A missing entry (first boot) is written
// back as zero and read as zero. Any other failure is ErrInitFailure.
func (b *Bridge) Load() (State, error) {
	var st State

	dist, err := b.loadOrInit(KeyDistance)
	if err != nil {
		return st, err
	}
	elapsed, err := b.loadOrInit(KeyTime)
	if err != nil {
		return st, err
	}

	if err := b.store.Commit(); err != nil {
		core.ErrorPrintln("[persist] commit after load failed: " + err.Error())
	}

	st.DistanceScaled = dist
	st.ElapsedS = elapsed
	core.DebugPrintln("[persist] loaded distance=" + core.Itoa(int(dist)) + " time=" + core.Itoa(int(elapsed)))
	return st, nil
}

func (b *Bridge) loadOrInit(key string) (int32, error) {
	v, err := b.store.GetI32(Namespace, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return 0, &Error{Kind: ErrInitFailure, Op: "get", Key: key, Err: err}
	}

	// First boot: seed the entry
	if err := b.store.SetI32(Namespace, key, 0); err != nil {
		core.ErrorPrintln("[persist] seeding " + key + " failed: " + err.Error())
	}
	return 0, nil
}

// Save writes both entries and commits. A failure is logged and returned
// as ErrWriteFailure; it is never fatal.
func (b *Bridge) Save(st State) error {
	if err := b.store.SetI32(Namespace, KeyTime, st.ElapsedS); err != nil {
		return b.writeFailed("set", KeyTime, err)
	}
	if err := b.store.SetI32(Namespace, KeyDistance, st.DistanceScaled); err != nil {
		return b.writeFailed("set", KeyDistance, err)
	}
	if err := b.store.Commit(); err != nil {
		return b.writeFailed("commit", "", err)
	}
	return nil
}

func (b *Bridge) writeFailed(op, key string, err error) error {
	e := &Error{Kind: ErrWriteFailure, Op: op, Key: key, Err: err}
	core.ErrorPrintln("[persist] " + e.Error())
	return e
}

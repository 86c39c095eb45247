package tacho

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"tachometer/core"
	"tachometer/display"
	"tachometer/persist"
	"tachometer/protocol"
	"tachometer/ride"
)

const (
	modePin  core.GPIOPin = 26
	pulsePin core.GPIOPin = 14
)

type fakeGPIO struct {
	low        map[core.GPIOPin]bool
	configured map[core.GPIOPin]bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		low:        make(map[core.GPIOPin]bool),
		configured: make(map[core.GPIOPin]bool),
	}
}

func (g *fakeGPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	g.configured[pin] = true
	return nil
}

func (g *fakeGPIO) ReadPin(pin core.GPIOPin) bool {
	return !g.low[pin]
}

type fakeRenderer struct {
	clears  int
	flushes int
	lines   []display.Line
}

func (r *fakeRenderer) Clear() {
	r.clears++
	r.lines = nil
}

func (r *fakeRenderer) DisplayText(row uint8, text string, maxLen int) {
	r.lines = append(r.lines, display.Line{Row: row, Text: text, MaxLen: maxLen})
}

func (r *fakeRenderer) DisplayTextLarge(row uint8, text string, maxLen int) {
	r.lines = append(r.lines, display.Line{Row: row, Text: text, MaxLen: maxLen, Large: true})
}

func (r *fakeRenderer) Flush() error {
	r.flushes++
	return nil
}

// historyStore records the committed Time value after every commit
type historyStore struct {
	*persist.MemoryStore
	times []int32
}

func (h *historyStore) Commit() error {
	if err := h.MemoryStore.Commit(); err != nil {
		return err
	}
	v, _ := h.Committed(persist.Namespace, persist.KeyTime)
	h.times = append(h.times, v)
	return nil
}

type rig struct {
	tach      *Tachometer
	gpio      *fakeGPIO
	clock     *core.ManualClock
	renderer  *fakeRenderer
	store     *historyStore
	telemetry *bytes.Buffer
}

func newRig(t *testing.T, store *persist.MemoryStore) *rig {
	t.Helper()
	if store == nil {
		store = persist.NewMemoryStore()
	}
	r := &rig{
		gpio:      newFakeGPIO(),
		clock:     core.NewManualClock(0),
		renderer:  &fakeRenderer{},
		store:     &historyStore{MemoryStore: store},
		telemetry: &bytes.Buffer{},
	}
	cfg := DefaultConfig()
	cfg.ModePin = modePin
	cfg.PulsePin = pulsePin

	tach, err := New(cfg, Deps{
		GPIO:      r.gpio,
		Clock:     r.clock,
		Store:     r.store,
		Renderer:  r.renderer,
		Telemetry: r.telemetry,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := tach.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	r.tach = tach
	return r
}

// stepAt sets the clock and runs one iteration
func (r *rig) stepAt(ms uint64) {
	r.clock.Set(ms)
	r.tach.Step()
}

// runUntil steps every millisecond after the current time up to and including ms
func (r *rig) runUntil(ms uint64) {
	for now := r.clock.NowMS() + 1; now <= ms; now++ {
		r.stepAt(now)
	}
}

func (r *rig) reports(t *testing.T) []protocol.Report {
	t.Helper()
	dec := protocol.NewDecoder()
	dec.Write(r.telemetry.Bytes())

	var out []protocol.Report
	for {
		frame, ok := dec.Next()
		if !ok {
			return out
		}
		rep, err := protocol.DecodeReport(frame.Payload)
		if err != nil {
			t.Fatalf("DecodeReport failed: %v", err)
		}
		out = append(out, rep)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(DefaultConfig(), Deps{GPIO: newFakeGPIO()})
	if !errors.Is(err, ErrMissingDependency) {
		t.Errorf("Expected ErrMissingDependency, got %v", err)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	tach, err := New(Config{}, Deps{
		GPIO:     newFakeGPIO(),
		Clock:    core.NewManualClock(0),
		Store:    persist.NewMemoryStore(),
		Renderer: &fakeRenderer{},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	def := DefaultConfig()
	if tach.cfg.CircumferenceM != def.CircumferenceM {
		t.Errorf("Expected circumference %v, got %v", def.CircumferenceM, tach.cfg.CircumferenceM)
	}
	if tach.cfg.StatsPeriodMS != 1000 || tach.cfg.RenderPeriodMS != 500 {
		t.Errorf("Expected periods 1000/500, got %d/%d", tach.cfg.StatsPeriodMS, tach.cfg.RenderPeriodMS)
	}
	if tach.cfg.DebounceMS != 10 || tach.cfg.HoldMS != 2000 {
		t.Errorf("Expected debounce/hold 10/2000, got %d/%d", tach.cfg.DebounceMS, tach.cfg.HoldMS)
	}
}

func TestStartConfiguresPins(t *testing.T) {
	r := newRig(t, nil)
	if !r.gpio.configured[modePin] || !r.gpio.configured[pulsePin] {
		t.Errorf("Expected both pins configured, got %v", r.gpio.configured)
	}
}

func TestStartInitFailureIsFatal(t *testing.T) {
	store := persist.NewMemoryStore()
	store.FailGet = errors.New("flash unreadable")

	tach, err := New(DefaultConfig(), Deps{
		GPIO:     newFakeGPIO(),
		Clock:    core.NewManualClock(0),
		Store:    store,
		Renderer: &fakeRenderer{},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = tach.Start()
	if !errors.Is(err, persist.ErrInitFailure) {
		t.Fatalf("Expected ErrInitFailure, got %v", err)
	}
	if err := tach.Run(nil); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Expected ErrNotStarted from Run, got %v", err)
	}
}

func TestBootRestoresAndRendersPersistedTotals(t *testing.T) {
	store := persist.NewMemoryStore()
	store.SetI32(persist.Namespace, persist.KeyDistance, 12000)
	store.SetI32(persist.Namespace, persist.KeyTime, 3600)
	store.Commit()

	r := newRig(t, store)
	st := r.tach.Stats()
	if !approx(st.DistanceM, 12.0) || st.ElapsedS != 3600 {
		t.Errorf("Expected 12.0m / 3600s, got %v / %d", st.DistanceM, st.ElapsedS)
	}
	if !approx(st.AvgSpeedKMH, 12.0) {
		t.Errorf("Expected average 12.0, got %v", st.AvgSpeedKMH)
	}

	r.stepAt(0)
	want := []display.Line{
		{Row: 1, Text: " SPD: 0.00km/h", MaxLen: 20},
		{Row: 3, Text: " AVG: 12.00km/h", MaxLen: 20},
		{Row: 5, Text: "DIST: 12.00km", MaxLen: 20},
		{Row: 7, Text: "TIME: 01:00:00", MaxLen: 20},
	}
	if !reflect.DeepEqual(r.renderer.lines, want) {
		t.Errorf("Expected %v, got %v", want, r.renderer.lines)
	}
	if r.renderer.flushes != 1 {
		t.Errorf("Expected 1 flush, got %d", r.renderer.flushes)
	}
}

func TestFivePulsesInOnePeriod(t *testing.T) {
	r := newRig(t, nil)
	r.stepAt(0)

	// Five 30ms presses, 30ms apart
	for i := uint64(0); i < 5; i++ {
		start := 100 + i*60
		r.runUntil(start - 1)
		r.gpio.low[pulsePin] = true
		r.runUntil(start + 29)
		r.gpio.low[pulsePin] = false
	}
	r.runUntil(1000)

	if got := r.tach.PendingPulses(); got != 5 {
		t.Fatalf("Expected 5 pending pulses, got %d", got)
	}
	if r.tach.Stats().ElapsedS != 0 {
		t.Fatalf("Expected no tick before the period elapsed")
	}

	r.stepAt(1001)
	st := r.tach.Stats()
	if st.ElapsedS != 1 {
		t.Errorf("Expected elapsed 1, got %d", st.ElapsedS)
	}
	if !approx(st.SpeedMS, 5.175) {
		t.Errorf("Expected speed 5.175 m/s, got %v", st.SpeedMS)
	}
	if !approx(st.SpeedKMH, 18.63) {
		t.Errorf("Expected speed 18.63 km/h, got %v", st.SpeedKMH)
	}
	if !approx(st.DistanceM, 0.005175) {
		t.Errorf("Expected distance 0.005175, got %v", st.DistanceM)
	}
	if r.tach.PendingPulses() != 0 {
		t.Errorf("Expected counter reset after tick, got %d", r.tach.PendingPulses())
	}
	if got := r.tach.Strings().SpeedLine; got != " SPD: 18.63km/h" {
		t.Errorf("Expected speed line ' SPD: 18.63km/h', got %q", got)
	}

	if v, _ := r.store.Committed(persist.Namespace, persist.KeyTime); v != 1 {
		t.Errorf("Expected persisted time 1, got %d", v)
	}
	if v, _ := r.store.Committed(persist.Namespace, persist.KeyDistance); v != 5 {
		t.Errorf("Expected persisted distance 5, got %d", v)
	}

	reps := r.reports(t)
	if len(reps) != 1 {
		t.Fatalf("Expected 1 report, got %d", len(reps))
	}
	if reps[0].Pulses != 5 || reps[0].SpeedCentiKMH != 1863 || reps[0].ElapsedS != 1 {
		t.Errorf("Expected pulses 5 speed 1863 elapsed 1, got %+v", reps[0])
	}
}

func TestShortPressCyclesDisplay(t *testing.T) {
	r := newRig(t, nil)
	r.stepAt(0)

	r.gpio.low[modePin] = true
	r.runUntil(150)
	r.gpio.low[modePin] = false
	r.runUntil(501)

	if r.tach.Mode() != display.Speed {
		t.Fatalf("Expected mode Speed, got %v", r.tach.Mode())
	}
	want := display.ViewFor(display.Speed, r.tach.Strings()).Lines
	if !reflect.DeepEqual(r.renderer.lines, want) {
		t.Errorf("Expected %v, got %v", want, r.renderer.lines)
	}
	if r.renderer.lines[0].Text != "SPEED:" {
		t.Errorf("Expected title SPEED:, got %q", r.renderer.lines[0].Text)
	}
}

func TestRenderCadence(t *testing.T) {
	r := newRig(t, nil)
	r.stepAt(0)
	r.runUntil(500)
	if r.renderer.flushes != 1 {
		t.Errorf("Expected 1 render by 500ms, got %d", r.renderer.flushes)
	}
	r.stepAt(501)
	if r.renderer.flushes != 2 {
		t.Errorf("Expected 2 renders at 501ms, got %d", r.renderer.flushes)
	}
}

func TestLongHoldSameTickAsPeriodFlushesFirst(t *testing.T) {
	r := newRig(t, nil)

	r.stepAt(0)
	r.gpio.low[modePin] = true
	r.stepAt(100)
	r.stepAt(111) // press edge: mode Speed
	if r.tach.Mode() != display.Speed {
		t.Fatalf("Expected mode Speed after press edge, got %v", r.tach.Mode())
	}
	r.stepAt(500)
	r.stepAt(1001) // tick 1

	// Period rollover and long hold detected in the same iteration
	r.stepAt(2101)

	n := len(r.store.times)
	if n < 2 || r.store.times[n-2] != 2 || r.store.times[n-1] != 0 {
		t.Fatalf("Expected commits ending in [2 0], got %v", r.store.times)
	}
	if r.tach.Mode() != display.All {
		t.Errorf("Expected mode All after reset, got %v", r.tach.Mode())
	}
	if st := r.tach.Stats(); st != (ride.Stats{}) {
		t.Errorf("Expected zeroed stats, got %+v", st)
	}
	if got := r.tach.Strings().TimeLine; got != "TIME: 00:00:00" {
		t.Errorf("Expected reset time line, got %q", got)
	}

	// Hold is reported once
	commits := len(r.store.times)
	r.stepAt(3000)
	if len(r.store.times) != commits {
		t.Fatalf("Expected no second reset while still held, got %v", r.store.times)
	}
	r.stepAt(3500)
	if r.store.times[len(r.store.times)-1] != 1 {
		t.Errorf("Expected first post-reset tick to store 1, got %v", r.store.times)
	}

	reps := r.reports(t)
	if len(reps) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(reps))
	}
	if reps[1].Flags != 0 || reps[1].ElapsedS != 2 {
		t.Errorf("Expected pre-reset report elapsed 2 without flags, got %+v", reps[1])
	}
	if reps[2].Flags&protocol.FlagReset == 0 || reps[2].ElapsedS != 1 {
		t.Errorf("Expected post-reset report flagged, got %+v", reps[2])
	}
}

func TestSaveFailureKeepsRunning(t *testing.T) {
	r := newRig(t, nil)
	r.store.FailCommit = errors.New("flash busy")

	r.stepAt(0)
	r.stepAt(1001)
	if r.tach.Stats().ElapsedS != 1 {
		t.Fatalf("Expected tick despite store failure")
	}

	r.store.FailCommit = nil
	r.stepAt(2002)
	if v, _ := r.store.Committed(persist.Namespace, persist.KeyTime); v != 2 {
		t.Errorf("Expected retry to persist time 2, got %d", v)
	}

	reps := r.reports(t)
	if len(reps) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(reps))
	}
	if reps[0].Flags&protocol.FlagStoreFail == 0 {
		t.Errorf("Expected store failure flag, got %+v", reps[0])
	}
	if reps[1].Flags != 0 {
		t.Errorf("Expected flags cleared, got %+v", reps[1])
	}
}

func TestStepBeforeStartIsNoop(t *testing.T) {
	renderer := &fakeRenderer{}
	tach, err := New(DefaultConfig(), Deps{
		GPIO:     newFakeGPIO(),
		Clock:    core.NewManualClock(5000),
		Store:    persist.NewMemoryStore(),
		Renderer: renderer,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	tach.Step()
	if renderer.clears != 0 || tach.Stats().ElapsedS != 0 {
		t.Errorf("Expected no work before Start")
	}
}

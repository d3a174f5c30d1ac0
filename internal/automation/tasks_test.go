package automation

import (
	"errors"
	"testing"
	"time"

	"github.com/letung3105/serverless-iot-esp32/internal/device"
	"github.com/letung3105/serverless-iot-esp32/internal/scheduler"
)

// ─── Mock Dependencies ──────────────────────────────────────────────────────

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeSync counts every call into the sync service.
type fakeSync struct {
	connected  bool
	connectErr error

	connects           int
	loops              int
	shadowPublishes    int
	measurementBatches int
}

func (f *fakeSync) Connected() bool { return f.connected }

func (f *fakeSync) Connect() error {
	f.connects++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeSync) Loop() { f.loops++ }

func (f *fakeSync) PublishShadowUpdate() error {
	f.shadowPublishes++
	return nil
}

func (f *fakeSync) PublishSensorMeasurements() error {
	f.measurementBatches++
	return nil
}

// stubLight / stubMoisture yield a settable value or error.
type stubLight struct {
	lux float64
	err error
}

func (s *stubLight) ReadLux() (float64, error) { return s.lux, s.err }

type stubMoisture struct {
	level float64
	err   error
}

func (s *stubMoisture) ReadMoisture() (float64, error) { return s.level, s.err }

// recordingSwitch captures every hardware write.
type recordingSwitch struct {
	writes []bool
}

func (r *recordingSwitch) Set(on bool) { r.writes = append(r.writes, on) }

func (r *recordingSwitch) last() (bool, bool) {
	if len(r.writes) == 0 {
		return false, false
	}
	return r.writes[len(r.writes)-1], true
}

// harness bundles the full wiring under a virtual clock.
type harness struct {
	clock    *fakeClock
	sched    *scheduler.Scheduler
	state    *device.State
	sync     *fakeSync
	tasks    *Tasks
	light    *stubLight
	moisture *stubMoisture
	lamp     *recordingSwitch
	pump     *recordingSwitch
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		clock:    newFakeClock(),
		sync:     &fakeSync{},
		light:    &stubLight{},
		moisture: &stubMoisture{},
		lamp:     &recordingSwitch{},
		pump:     &recordingSwitch{},
	}
	h.sched = scheduler.New(h.clock)
	h.state = device.NewState(h.light, h.moisture, nil, h.lamp, h.pump)

	tasks, err := Build(h.sched, h.state, h.sync, cfg, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	h.tasks = tasks
	return h
}

// step advances the clock and runs one tick.
func (h *harness) step(d time.Duration) {
	h.clock.Advance(d)
	h.sched.Tick()
}

// ─── Watering Dose ──────────────────────────────────────────────────────────

func TestPumpDoseBounding(t *testing.T) {
	cfg := Config{
		MoistureRuleInterval: 15 * time.Minute,
		PumpDose:             5 * time.Second,
	}
	h := newHarness(t, cfg)
	h.sync.connected = true

	// Scenario: moisture reading 300, threshold 400.
	h.moisture.level = 300
	h.state.SetMoistureThreshold(400)
	h.tasks.MoistureRule.Enable()

	// Rule fires after its interval and starts the dose.
	h.step(15 * time.Minute)
	if want := []bool{true}; len(h.pump.writes) != 1 || h.pump.writes[0] != true {
		t.Fatalf("pump writes = %v, want %v", h.pump.writes, want)
	}

	// Shadow publish was re-armed by the dose start; it runs next tick.
	h.step(0)
	if h.sync.shadowPublishes != 1 {
		t.Fatalf("shadow publishes = %d after dose start, want 1", h.sync.shadowPublishes)
	}

	// Pump stays on until the full dose elapses — and no sooner.
	h.step(4 * time.Second)
	if len(h.pump.writes) != 1 {
		t.Fatalf("pump written again before dose elapsed: %v", h.pump.writes)
	}

	h.step(time.Second)
	if len(h.pump.writes) != 2 || h.pump.writes[1] != false {
		t.Fatalf("pump writes = %v, want [true false]", h.pump.writes)
	}

	// Second shadow publish for the off transition.
	h.step(0)
	if h.sync.shadowPublishes != 2 {
		t.Fatalf("shadow publishes = %d after dose end, want 2", h.sync.shadowPublishes)
	}

	// Exactly one on and one off write per dose, nothing further.
	h.step(time.Minute)
	if len(h.pump.writes) != 2 {
		t.Fatalf("pump writes = %v after dose, want exactly 2", h.pump.writes)
	}
}

func TestMoistureRuleNoActionAtThreshold(t *testing.T) {
	h := newHarness(t, Config{MoistureRuleInterval: time.Minute})
	h.moisture.level = 400
	h.state.SetMoistureThreshold(400)
	h.tasks.MoistureRule.Enable()

	h.step(time.Minute)
	if len(h.pump.writes) != 0 {
		t.Fatalf("pump writes = %v at threshold, want none", h.pump.writes)
	}
}

func TestMoistureRuleSensorFailureDoesNotWater(t *testing.T) {
	h := newHarness(t, Config{MoistureRuleInterval: time.Minute})
	h.moisture.err = errors.New("adc busy")
	h.state.SetMoistureThreshold(400)
	h.tasks.MoistureRule.Enable()

	// A failed read must not compare as "below threshold".
	h.step(time.Minute)
	if len(h.pump.writes) != 0 {
		t.Fatalf("pump writes = %v after failed read, want none", h.pump.writes)
	}
}

// ─── Light Rule ─────────────────────────────────────────────────────────────

func TestLightRuleIdempotence(t *testing.T) {
	cfg := Config{LightRuleInterval: 30 * time.Minute}
	h := newHarness(t, cfg)
	h.sync.connected = true
	h.state.SetLightThreshold(100)

	// Below threshold: every evaluation ends with the lamp on.
	h.light.lux = 75
	h.tasks.LightRule.Enable()
	for i := 0; i < 3; i++ {
		h.step(30 * time.Minute)
		if on, ok := h.lamp.last(); !ok || !on {
			t.Fatalf("pass %d: lamp not left on for reading below threshold", i+1)
		}
	}

	// At threshold: every evaluation ends with the lamp off, never
	// alternating without a reading change.
	h.light.lux = 100
	for i := 0; i < 3; i++ {
		h.step(30 * time.Minute)
		if on, _ := h.lamp.last(); on {
			t.Fatalf("pass %d: lamp left on for reading at threshold", i+1)
		}
	}
}

func TestLightRuleOffThenTest(t *testing.T) {
	h := newHarness(t, Config{LightRuleInterval: time.Minute})
	h.sync.connected = true
	h.state.SetLightThreshold(100)
	h.light.lux = 50
	h.tasks.LightRule.Enable()

	h.step(time.Minute)

	// The rule always writes off before testing, so a single evaluation
	// with a dark reading produces off-then-on at the pin.
	want := []bool{false, true}
	if len(h.lamp.writes) != len(want) {
		t.Fatalf("lamp writes = %v, want %v", h.lamp.writes, want)
	}
	for i := range want {
		if h.lamp.writes[i] != want[i] {
			t.Fatalf("lamp writes = %v, want %v", h.lamp.writes, want)
		}
	}
}

func TestLightRuleSensorFailureRestoresLamp(t *testing.T) {
	h := newHarness(t, Config{LightRuleInterval: time.Minute})
	h.sync.connected = true
	h.state.SetLightThreshold(100)

	// Establish the lamp on via a good reading.
	h.light.lux = 50
	h.tasks.LightRule.Enable()
	h.step(time.Minute)
	if !h.state.LampOn() {
		t.Fatal("lamp not on after dark reading")
	}
	h.step(0) // drain the pending shadow publish
	publishes := h.sync.shadowPublishes

	// Failed read: the lamp is restored to its last commanded state and
	// no new state is reported.
	h.light.err = errors.New("i2c timeout")
	h.step(time.Minute)
	if !h.state.LampOn() {
		t.Fatal("lamp not restored after failed read")
	}
	h.step(0)
	if h.sync.shadowPublishes != publishes {
		t.Fatalf("shadow publishes = %d after failed read, want %d", h.sync.shadowPublishes, publishes)
	}
}

func TestThresholdChangeFlipsLightRuleOutcome(t *testing.T) {
	h := newHarness(t, Config{LightRuleInterval: time.Minute})
	h.sync.connected = true
	h.light.lux = 75
	h.state.SetLightThreshold(50)
	h.tasks.LightRule.Enable()

	h.step(time.Minute)
	if h.state.LampOn() {
		t.Fatal("lamp on for reading above threshold")
	}

	// A cloud delta raises the threshold; the same reading now turns the
	// lamp on at the next evaluation.
	h.state.SetLightThreshold(100)
	h.step(time.Minute)
	if !h.state.LampOn() {
		t.Fatal("lamp off after threshold raised above reading")
	}
}

// ─── Connection Tasks ───────────────────────────────────────────────────────

func TestReconnectTaskGating(t *testing.T) {
	cfg := Config{ReconnectInterval: 5 * time.Second}
	h := newHarness(t, cfg)
	h.sync.connectErr = errors.New("endpoint unreachable")
	h.tasks.EnableAll()

	// First attempt happens on the first tick, then once per interval.
	h.step(0)
	if h.sync.connects != 1 {
		t.Fatalf("connects = %d after first tick, want 1", h.sync.connects)
	}
	h.step(5 * time.Second)
	if h.sync.connects != 2 {
		t.Fatalf("connects = %d after one interval, want 2", h.sync.connects)
	}

	// Once connected, no further attempts are made.
	h.sync.connectErr = nil
	h.step(5 * time.Second)
	if h.sync.connects != 3 || !h.sync.connected {
		t.Fatalf("connects = %d, connected = %v", h.sync.connects, h.sync.connected)
	}
	for i := 0; i < 5; i++ {
		h.step(5 * time.Second)
	}
	if h.sync.connects != 3 {
		t.Fatalf("connects = %d while connected, want 3", h.sync.connects)
	}
}

func TestConnectTriggersDelayedShadowPublish(t *testing.T) {
	cfg := Config{
		ReconnectInterval:   5 * time.Second,
		ConnectPublishDelay: 500 * time.Millisecond,
	}
	h := newHarness(t, cfg)
	h.tasks.EnableAll()

	h.step(0) // connect succeeds on the first tick
	if !h.sync.connected {
		t.Fatal("not connected after first tick")
	}
	if h.sync.shadowPublishes != 0 {
		t.Fatal("shadow published before the settle delay")
	}

	h.step(500 * time.Millisecond)
	if h.sync.shadowPublishes != 1 {
		t.Fatalf("shadow publishes = %d after settle delay, want 1", h.sync.shadowPublishes)
	}
}

func TestPublishTasksVetoedWhileOffline(t *testing.T) {
	h := newHarness(t, Config{})

	h.tasks.RequestShadowPublish()
	h.tasks.MeasurementsPublish.Restart()
	if h.tasks.ShadowPublish.State() != scheduler.StateDormant {
		t.Fatalf("shadow publish state = %s while offline, want dormant", h.tasks.ShadowPublish.State())
	}

	for i := 0; i < 3; i++ {
		h.step(time.Second)
	}
	if h.sync.shadowPublishes != 0 || h.sync.measurementBatches != 0 {
		t.Fatalf("publishes = %d/%d while offline, want 0/0",
			h.sync.shadowPublishes, h.sync.measurementBatches)
	}
}

func TestServiceLoopGatedOnConnected(t *testing.T) {
	h := newHarness(t, Config{})
	h.tasks.ServiceLoop.Enable()

	h.step(0)
	if h.sync.loops != 0 {
		t.Fatalf("loops = %d while disconnected, want 0", h.sync.loops)
	}

	h.sync.connected = true
	h.step(0)
	h.step(0)
	if h.sync.loops != 2 {
		t.Fatalf("loops = %d while connected, want 2", h.sync.loops)
	}
}

// ─── Telemetry Cadence ──────────────────────────────────────────────────────

func TestPeriodicMeasurementsPublish(t *testing.T) {
	cfg := Config{MeasurementsInterval: 10 * time.Minute}
	h := newHarness(t, cfg)
	h.sync.connected = true
	h.tasks.PeriodicMeasurements.Enable()

	h.step(10 * time.Minute) // periodic task re-arms the one-shot
	h.step(0)                // one-shot runs
	if h.sync.measurementBatches != 1 {
		t.Fatalf("measurement batches = %d, want 1", h.sync.measurementBatches)
	}

	h.step(10 * time.Minute)
	h.step(0)
	if h.sync.measurementBatches != 2 {
		t.Fatalf("measurement batches = %d, want 2", h.sync.measurementBatches)
	}
}

// ─── Startup Wiring ─────────────────────────────────────────────────────────

func TestEnableAllRespectsMoistureErratum(t *testing.T) {
	h := newHarness(t, Config{})
	h.tasks.EnableAll()

	if h.tasks.MoistureRule.State() != scheduler.StateDormant {
		t.Fatalf("moisture rule state = %s, want dormant by default", h.tasks.MoistureRule.State())
	}
	if h.tasks.LightRule.State() != scheduler.StateArmed {
		t.Fatalf("light rule state = %s, want armed", h.tasks.LightRule.State())
	}

	h2 := newHarness(t, Config{MoistureRuleEnabled: true})
	h2.tasks.EnableAll()
	if h2.tasks.MoistureRule.State() != scheduler.StateArmed {
		t.Fatalf("moisture rule state = %s with erratum override, want armed", h2.tasks.MoistureRule.State())
	}
}

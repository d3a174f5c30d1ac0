package automation

import (
	"time"

	"github.com/letung3105/serverless-iot-esp32/internal/device"
	"github.com/letung3105/serverless-iot-esp32/internal/scheduler"
)

// Task names, fixed at startup.
const (
	TaskServiceLoop          = "service-loop"
	TaskReconnect            = "reconnect"
	TaskShadowPublish        = "shadow-publish"
	TaskMeasurementsPublish  = "measurements-publish"
	TaskPeriodicMeasurements = "periodic-measurements"
	TaskLightRule            = "light-rule"
	TaskMoistureRule         = "moisture-rule"
	TaskPumpDose             = "pump-dose"
)

// Default cadences, matching the reference firmware.
const (
	defaultReconnectInterval    = 5 * time.Second
	defaultMeasurementsInterval = 10 * time.Minute
	defaultLightRuleInterval    = 30 * time.Minute
	defaultMoistureRuleInterval = 15 * time.Minute
	defaultPumpDose             = 5 * time.Second
	defaultConnectPublishDelay  = 500 * time.Millisecond
)

// SyncService is the cloud sync surface the tasks drive. Implemented by
// shadow.Service; tests supply fakes.
type SyncService interface {
	Connected() bool
	Connect() error
	Loop()
	PublishShadowUpdate() error
	PublishSensorMeasurements() error
}

// Logger defines the logging interface used by the task bodies.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config carries the task cadences. Zero values fall back to the firmware
// defaults above.
type Config struct {
	ReconnectInterval    time.Duration
	MeasurementsInterval time.Duration
	LightRuleInterval    time.Duration
	MoistureRuleInterval time.Duration
	PumpDose             time.Duration
	ConnectPublishDelay  time.Duration

	// MoistureRuleEnabled arms the moisture rule at startup. Off by
	// default: on the reference hardware, analogue moisture reads
	// interfere with the wireless radio, so the rule must be explicitly
	// enabled after revalidating on the target board.
	MoistureRuleEnabled bool
}

// withDefaults fills unset cadences.
func (c Config) withDefaults() Config {
	if c.ReconnectInterval <= 0 {
		c.ReconnectInterval = defaultReconnectInterval
	}
	if c.MeasurementsInterval <= 0 {
		c.MeasurementsInterval = defaultMeasurementsInterval
	}
	if c.LightRuleInterval <= 0 {
		c.LightRuleInterval = defaultLightRuleInterval
	}
	if c.MoistureRuleInterval <= 0 {
		c.MoistureRuleInterval = defaultMoistureRuleInterval
	}
	if c.PumpDose <= 0 {
		c.PumpDose = defaultPumpDose
	}
	if c.ConnectPublishDelay <= 0 {
		c.ConnectPublishDelay = defaultConnectPublishDelay
	}
	return c
}

// Tasks holds the registered task set. Fields are exported so the wiring in
// main can hand individual tasks to collaborators (the sync service re-arms
// ShadowPublish when a delta lands).
type Tasks struct {
	ServiceLoop          *scheduler.Task
	Reconnect            *scheduler.Task
	ShadowPublish        *scheduler.Task
	MeasurementsPublish  *scheduler.Task
	PeriodicMeasurements *scheduler.Task
	LightRule            *scheduler.Task
	MoistureRule         *scheduler.Task
	PumpDose             *scheduler.Task

	cfg    Config
	logger Logger
}

// Build registers the fixed task set with the scheduler. All tasks start
// dormant; call EnableAll once startup wiring is complete.
func Build(sched *scheduler.Scheduler, state *device.State, sync SyncService, cfg Config, logger Logger) (*Tasks, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	cfg = cfg.withDefaults()

	t := &Tasks{cfg: cfg, logger: logger}
	var err error

	// One-shot publish tasks. The enable predicate is the connectivity
	// gate: re-arming while offline is vetoed, so state-change producers
	// never need to check the connection themselves.
	t.ShadowPublish, err = sched.Add(scheduler.Config{
		Name:       TaskShadowPublish,
		Iterations: 1,
		OnEnable:   sync.Connected,
		Run: func() {
			if pubErr := sync.PublishShadowUpdate(); pubErr != nil {
				logger.Warn("shadow update publish failed", "error", pubErr)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	t.MeasurementsPublish, err = sched.Add(scheduler.Config{
		Name:       TaskMeasurementsPublish,
		Iterations: 1,
		OnEnable:   sync.Connected,
		Run: func() {
			if pubErr := sync.PublishSensorMeasurements(); pubErr != nil {
				logger.Warn("measurements publish failed", "error", pubErr)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	// Connection upkeep.
	t.ServiceLoop, err = sched.Add(scheduler.Config{
		Name:       TaskServiceLoop,
		Iterations: scheduler.Forever,
		Run: func() {
			if sync.Connected() {
				sync.Loop()
			}
		},
	})
	if err != nil {
		return nil, err
	}

	t.Reconnect, err = sched.Add(scheduler.Config{
		Name:       TaskReconnect,
		Interval:   cfg.ReconnectInterval,
		Iterations: scheduler.Forever,
		Run: func() {
			if sync.Connected() {
				return
			}
			if connErr := sync.Connect(); connErr != nil {
				logger.Warn("connect attempt failed", "error", connErr)
				return
			}
			// Freshly connected: report current state after a short
			// settle delay so the cloud converges promptly.
			t.ShadowPublish.RestartDelayed(cfg.ConnectPublishDelay)
		},
	})
	if err != nil {
		return nil, err
	}

	// Telemetry cadence.
	t.PeriodicMeasurements, err = sched.Add(scheduler.Config{
		Name:       TaskPeriodicMeasurements,
		Interval:   cfg.MeasurementsInterval,
		Iterations: scheduler.Forever,
		Run: func() {
			t.MeasurementsPublish.Restart()
		},
	})
	if err != nil {
		return nil, err
	}

	// Watering dose: the interval is the dose length. The pump turns on
	// when the task arms and off when it retires; the disable hook is the
	// only place the pump is guaranteed to be switched back off.
	t.PumpDose, err = sched.Add(scheduler.Config{
		Name:       TaskPumpDose,
		Interval:   cfg.PumpDose,
		Iterations: 1,
		OnEnable: func() bool {
			logger.Info("watering started", "dose", cfg.PumpDose)
			state.WritePump(true)
			t.ShadowPublish.Restart()
			return true
		},
		OnDisable: func() {
			logger.Info("watering stopped")
			state.WritePump(false)
			t.ShadowPublish.Restart()
		},
	})
	if err != nil {
		return nil, err
	}

	// Threshold rules.
	t.LightRule, err = sched.Add(scheduler.Config{
		Name:       TaskLightRule,
		Interval:   cfg.LightRuleInterval,
		Iterations: scheduler.Forever,
		Run:        func() { t.runLightRule(state) },
	})
	if err != nil {
		return nil, err
	}

	t.MoistureRule, err = sched.Add(scheduler.Config{
		Name:       TaskMoistureRule,
		Interval:   cfg.MoistureRuleInterval,
		Iterations: scheduler.Forever,
		Run:        func() { t.runMoistureRule(state) },
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// runLightRule applies the off-then-test lamp policy: switch the lamp off,
// sample the light sensor, and switch it back on only when the reading is
// below the threshold. Writing off first means a previously missed hardware
// write cannot leave the commanded and physical states diverged.
func (t *Tasks) runLightRule(state *device.State) {
	prev := state.LampOn()
	state.WriteLamp(false)

	reading, err := state.ReadLight()
	if err != nil {
		// No new value: restore the last commanded state rather than
		// letting a failed read switch the lamp.
		t.logger.Warn("light rule skipped, sensor read failed", "error", err)
		state.WriteLamp(prev)
		return
	}

	state.WriteLamp(reading < state.LightThreshold())
	t.logger.Debug("light rule evaluated",
		"reading", reading,
		"threshold", state.LightThreshold(),
		"lamp_on", state.LampOn(),
	)
	t.ShadowPublish.Restart()
}

// runMoistureRule starts a watering dose when the soil moisture reading
// falls below the threshold. No action at or above the threshold.
func (t *Tasks) runMoistureRule(state *device.State) {
	reading, err := state.ReadMoisture()
	if err != nil {
		t.logger.Warn("moisture rule skipped, sensor read failed", "error", err)
		return
	}
	if reading < state.MoistureThreshold() {
		t.logger.Info("moisture below threshold",
			"reading", reading,
			"threshold", state.MoistureThreshold(),
		)
		t.PumpDose.Restart()
	}
}

// RequestShadowPublish re-arms the shadow publish one-shot. This is the
// system-wide "publish now" entry point; the sync service calls it after
// applying a desired-state delta.
func (t *Tasks) RequestShadowPublish() {
	t.ShadowPublish.Restart()
}

// EnableAll arms the periodic task set. The reconnect task is armed with a
// zero delay so the first connect attempt happens on the first tick rather
// than after a full reconnect interval. The moisture rule stays dormant
// unless explicitly enabled (platform erratum, see Config).
func (t *Tasks) EnableAll() {
	t.ServiceLoop.Enable()
	t.Reconnect.RestartDelayed(0)
	t.PeriodicMeasurements.Enable()
	t.LightRule.Enable()
	if t.cfg.MoistureRuleEnabled {
		t.MoistureRule.Enable()
	} else {
		t.logger.Info("moisture rule disabled (enable via config after hardware validation)")
	}
}

// Happy Herbs - Plant Monitoring and Automation Daemon
//
// This is the main entry point for the Happy Herbs daemon. It runs the
// device's single-threaded control loop: periodic sensor readings, threshold
// automation for the grow lamp and water pump, and state synchronisation
// with the device's AWS IoT shadow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/letung3105/serverless-iot-esp32/migrations"

	"github.com/letung3105/serverless-iot-esp32/internal/automation"
	"github.com/letung3105/serverless-iot-esp32/internal/device"
	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/config"
	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/influxdb"
	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/journal"
	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/logging"
	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/mqtt"
	"github.com/letung3105/serverless-iot-esp32/internal/scheduler"
	"github.com/letung3105/serverless-iot-esp32/internal/shadow"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// tickInterval is the control loop poll cadence. Task intervals are whole
// seconds and minutes, so 50ms of scheduling slop is invisible.
const tickInterval = 50 * time.Millisecond

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Happy Herbs daemon",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the local journal
	db, err := journal.Open(journal.Config{
		Path:        cfg.Journal.Path,
		WALMode:     cfg.Journal.WALMode,
		BusyTimeout: cfg.Journal.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() {
		log.Info("closing journal")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing journal", "error", closeErr)
		}
	}()
	log.Info("journal opened", "path", cfg.Journal.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("journal migrations complete")

	// Build sensor and actuator drivers
	state, err := buildDeviceState(cfg, log)
	if err != nil {
		return err
	}

	// Restore the last-known thresholds. The journal wins over config
	// defaults: it holds what the cloud last asked for.
	if restoreErr := restoreThresholds(ctx, db, cfg, state, log); restoreErr != nil {
		return fmt.Errorf("restoring thresholds: %w", restoreErr)
	}

	// Connect to InfluxDB (optional local telemetry mirror)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Journal every actuator transition and threshold change. These writes
	// are advisory: a failure is logged and the control loop carries on.
	thing := cfg.Device.ThingName
	state.SetOnActuation(func(actuator string, on bool) {
		if recErr := db.RecordActuation(ctx, actuator, on); recErr != nil {
			log.Warn("journalling actuation failed", "actuator", actuator, "error", recErr)
		}
		if influxClient != nil {
			influxClient.WriteActuatorState(thing, actuator, on)
		}
	})
	state.SetOnThreshold(func(name string, value float64) {
		if saveErr := db.SaveThreshold(ctx, name, value); saveErr != nil {
			log.Warn("journalling threshold failed", "threshold", name, "error", saveErr)
		}
	})

	// Create the AWS IoT transport. Certificates are loaded here, so a bad
	// TLS setup fails at startup; the first connect attempt happens on the
	// control loop.
	mqttClient, err := mqtt.New(cfg.AWS, thing)
	if err != nil {
		return fmt.Errorf("creating MQTT client: %w", err)
	}
	mqttClient.SetLogger(log.With("component", "mqtt"))
	defer func() {
		log.Info("disconnecting from AWS IoT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	// Create the shadow sync service
	syncService, err := shadow.NewService(thing, mqttClient, state)
	if err != nil {
		return fmt.Errorf("creating sync service: %w", err)
	}
	syncService.SetLogger(log.With("component", "shadow"))
	if influxClient != nil {
		syncService.SetMeasurementSink(influxClient)
	}

	// Register the control loop's task set
	sched := scheduler.New(scheduler.SystemClock())
	sched.SetLogger(log.With("component", "scheduler"))

	tasks, err := automation.Build(sched, state, syncService, automation.Config{
		ReconnectInterval:    cfg.GetReconnectInterval(),
		MeasurementsInterval: cfg.GetMeasurementsInterval(),
		LightRuleInterval:    cfg.GetLightRuleInterval(),
		MoistureRuleInterval: cfg.GetMoistureRuleInterval(),
		PumpDose:             cfg.GetPumpDose(),
		MoistureRuleEnabled:  cfg.Automation.MoistureRuleEnabled,
	}, log.With("component", "automation"))
	if err != nil {
		return fmt.Errorf("registering tasks: %w", err)
	}

	// A cloud delta that changes local state is answered with a fresh
	// reported document.
	syncService.SetOnDeltaApplied(tasks.RequestShadowPublish)

	tasks.EnableAll()
	log.Info("initialisation complete, entering control loop",
		"thing", thing,
		"tasks", sched.TaskCount(),
	)

	// Control loop: everything except the MQTT library's own goroutines
	// runs here, single-threaded.
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received, cleaning up")
			log.Info("Happy Herbs daemon stopped")
			return nil
		case <-ticker.C:
			sched.Tick()
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses HERBS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HERBS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildDeviceState wires the sensor and actuator drivers into a device state.
//
// Only the simulated driver set is wired in this build; real planter
// hardware hangs off an ESP32-class board, not this daemon's host. The
// simulate flag is still explicit so a misconfigured production deployment
// fails loudly instead of silently reporting synthetic readings.
func buildDeviceState(cfg *config.Config, log *logging.Logger) (*device.State, error) {
	if !cfg.Device.Simulate {
		return nil, fmt.Errorf("no hardware drivers wired for this platform; set device.simulate: true")
	}

	log.Info("using simulated sensor drivers")
	return device.NewState(
		&device.SimLightSensor{Base: 650, Jitter: 120},
		&device.SimMoistureSensor{Base: 520, Jitter: 60},
		&device.SimClimateSensor{Temperature: 22.5, Humidity: 55, Jitter: 2},
		&device.SimSwitch{},
		&device.SimSwitch{},
	), nil
}

// restoreThresholds seeds the automation thresholds from the journal,
// falling back to config defaults on first run.
func restoreThresholds(ctx context.Context, db *journal.DB, cfg *config.Config, state *device.State, log *logging.Logger) error {
	light := cfg.Device.Thresholds.Light
	if v, ok, err := db.LoadThreshold(ctx, device.ThresholdLight); err != nil {
		return err
	} else if ok {
		light = v
	}

	moisture := cfg.Device.Thresholds.Moisture
	if v, ok, err := db.LoadThreshold(ctx, device.ThresholdMoisture); err != nil {
		return err
	} else if ok {
		moisture = v
	}

	state.SetLightThreshold(light)
	state.SetMoistureThreshold(moisture)
	log.Info("thresholds restored", "light", light, "moisture", moisture)
	return nil
}

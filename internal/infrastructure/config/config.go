package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Happy Herbs daemon.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device     DeviceConfig     `yaml:"device"`
	AWS        AWSConfig        `yaml:"aws"`
	Automation AutomationConfig `yaml:"automation"`
	Journal    JournalConfig    `yaml:"journal"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DeviceConfig identifies the device and selects its sensor backend.
type DeviceConfig struct {
	// ThingName is the AWS IoT thing name. It appears in every shadow and
	// telemetry topic, so it must be set before the device can connect.
	ThingName string `yaml:"thing_name"`

	// Simulate swaps the hardware drivers for simulated ones. Useful for
	// running the daemon on a development machine with no sensors attached.
	Simulate bool `yaml:"simulate"`

	Thresholds ThresholdConfig `yaml:"thresholds"`
}

// ThresholdConfig contains the automation thresholds used until the cloud
// (or the journal) supplies persisted values.
type ThresholdConfig struct {
	Light    float64 `yaml:"light"`
	Moisture float64 `yaml:"moisture"`
}

// AWSConfig contains the AWS IoT Core connection settings.
type AWSConfig struct {
	// Endpoint is the account-specific AWS IoT endpoint host
	// (e.g. "xxxxxx-ats.iot.eu-west-2.amazonaws.com").
	Endpoint string    `yaml:"endpoint"`
	Port     int       `yaml:"port"`
	ClientID string    `yaml:"client_id"`
	QoS      int       `yaml:"qos"`
	TLS      TLSConfig `yaml:"tls"`

	// ConnectTimeout is the handshake budget in seconds for a single
	// connection attempt. Retry cadence is owned by the control loop,
	// not the client.
	ConnectTimeout int `yaml:"connect_timeout"`
}

// TLSConfig contains the mutual-TLS certificate paths for AWS IoT.
type TLSConfig struct {
	RootCAFile string `yaml:"root_ca_file"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
}

// AutomationConfig contains the control-loop task cadences. Durations are
// expressed in whole seconds or minutes to keep the YAML unambiguous; use
// the Get* helpers for time.Duration values.
type AutomationConfig struct {
	ReconnectIntervalSeconds    int `yaml:"reconnect_interval_seconds"`
	MeasurementsIntervalMinutes int `yaml:"measurements_interval_minutes"`
	LightRuleIntervalMinutes    int `yaml:"light_rule_interval_minutes"`
	MoistureRuleIntervalMinutes int `yaml:"moisture_rule_interval_minutes"`
	PumpDoseSeconds             int `yaml:"pump_dose_seconds"`

	// MoistureRuleEnabled arms the soil-moisture rule. Disabled by default:
	// on the reference hardware the moisture probe's analogue reads disturb
	// the radio, so the rule must be opted into after validation.
	MoistureRuleEnabled bool `yaml:"moisture_rule_enabled"`
}

// JournalConfig contains the local SQLite journal settings.
type JournalConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains the optional local telemetry mirror settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HERBS_SECTION_KEY
// For example: HERBS_DEVICE_THING_NAME, HERBS_AWS_ENDPOINT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Simulate: false,
			Thresholds: ThresholdConfig{
				Light:    900,
				Moisture: 400,
			},
		},
		AWS: AWSConfig{
			Port:           8883,
			QoS:            1,
			ConnectTimeout: 10,
		},
		Automation: AutomationConfig{
			ReconnectIntervalSeconds:    5,
			MeasurementsIntervalMinutes: 10,
			LightRuleIntervalMinutes:    30,
			MoistureRuleIntervalMinutes: 15,
			PumpDoseSeconds:             5,
		},
		Journal: JournalConfig{
			Path:        "./data/happyherbs.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HERBS_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("HERBS_DEVICE_THING_NAME"); v != "" {
		cfg.Device.ThingName = v
	}

	// AWS IoT
	if v := os.Getenv("HERBS_AWS_ENDPOINT"); v != "" {
		cfg.AWS.Endpoint = v
	}
	if v := os.Getenv("HERBS_AWS_CLIENT_ID"); v != "" {
		cfg.AWS.ClientID = v
	}
	if v := os.Getenv("HERBS_AWS_ROOT_CA_FILE"); v != "" {
		cfg.AWS.TLS.RootCAFile = v
	}
	if v := os.Getenv("HERBS_AWS_CERT_FILE"); v != "" {
		cfg.AWS.TLS.CertFile = v
	}
	if v := os.Getenv("HERBS_AWS_KEY_FILE"); v != "" {
		cfg.AWS.TLS.KeyFile = v
	}

	// Journal
	if v := os.Getenv("HERBS_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// InfluxDB
	if v := os.Getenv("HERBS_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.ThingName == "" {
		errs = append(errs, "device.thing_name is required (set HERBS_DEVICE_THING_NAME environment variable)")
	}

	// AWS validation. The endpoint and certificates are what let the device
	// speak for its thing name; without them the daemon can only ever run
	// the local rules, so fail loudly at startup instead.
	if c.AWS.Endpoint == "" {
		errs = append(errs, "aws.endpoint is required")
	}
	if c.AWS.Port < 1 || c.AWS.Port > 65535 {
		errs = append(errs, "aws.port must be between 1 and 65535")
	}
	if c.AWS.QoS < 0 || c.AWS.QoS > 2 {
		errs = append(errs, "aws.qos must be 0, 1, or 2")
	}
	if c.AWS.TLS.RootCAFile == "" || c.AWS.TLS.CertFile == "" || c.AWS.TLS.KeyFile == "" {
		errs = append(errs, "aws.tls root_ca_file, cert_file and key_file are all required")
	}

	// Automation validation
	if c.Automation.PumpDoseSeconds < 1 {
		errs = append(errs, "automation.pump_dose_seconds must be at least 1")
	}
	if c.Automation.ReconnectIntervalSeconds < 1 {
		errs = append(errs, "automation.reconnect_interval_seconds must be at least 1")
	}

	// Journal validation
	if c.Journal.Path == "" {
		errs = append(errs, "journal.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetConnectTimeout returns the AWS connect timeout as a Duration.
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.AWS.ConnectTimeout) * time.Second
}

// GetReconnectInterval returns the reconnect task cadence as a Duration.
func (c *Config) GetReconnectInterval() time.Duration {
	return time.Duration(c.Automation.ReconnectIntervalSeconds) * time.Second
}

// GetMeasurementsInterval returns the telemetry cadence as a Duration.
func (c *Config) GetMeasurementsInterval() time.Duration {
	return time.Duration(c.Automation.MeasurementsIntervalMinutes) * time.Minute
}

// GetLightRuleInterval returns the light rule cadence as a Duration.
func (c *Config) GetLightRuleInterval() time.Duration {
	return time.Duration(c.Automation.LightRuleIntervalMinutes) * time.Minute
}

// GetMoistureRuleInterval returns the moisture rule cadence as a Duration.
func (c *Config) GetMoistureRuleInterval() time.Duration {
	return time.Duration(c.Automation.MoistureRuleIntervalMinutes) * time.Minute
}

// GetPumpDose returns the watering dose length as a Duration.
func (c *Config) GetPumpDose() time.Duration {
	return time.Duration(c.Automation.PumpDoseSeconds) * time.Second
}

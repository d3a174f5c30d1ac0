package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validConfig returns a configuration that passes Validate. Tests mutate a
// single field to exercise each rule.
func validConfig() *Config {
	return &Config{
		Device: DeviceConfig{ThingName: "herbs-01"},
		AWS: AWSConfig{
			Endpoint: "example-ats.iot.eu-west-2.amazonaws.com",
			Port:     8883,
			QoS:      1,
			TLS: TLSConfig{
				RootCAFile: "/etc/herbs/AmazonRootCA1.pem",
				CertFile:   "/etc/herbs/device.pem.crt",
				KeyFile:    "/etc/herbs/private.pem.key",
			},
		},
		Automation: AutomationConfig{
			ReconnectIntervalSeconds: 5,
			PumpDoseSeconds:          5,
		},
		Journal: JournalConfig{Path: "/data/happyherbs.db"},
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
device:
  thing_name: "herbs-test"
  simulate: true
aws:
  endpoint: "example-ats.iot.eu-west-2.amazonaws.com"
  client_id: "herbs-test-client"
  tls:
    root_ca_file: "/tmp/root-ca.pem"
    cert_file: "/tmp/cert.pem"
    key_file: "/tmp/key.pem"
journal:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
automation:
  light_rule_interval_minutes: 45
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ThingName != "herbs-test" {
		t.Errorf("Device.ThingName = %q, want %q", cfg.Device.ThingName, "herbs-test")
	}

	if !cfg.Device.Simulate {
		t.Error("Device.Simulate = false, want true")
	}

	if cfg.Journal.Path != "/tmp/test.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "/tmp/test.db")
	}

	// Unset sections keep their defaults.
	if cfg.AWS.Port != 8883 {
		t.Errorf("AWS.Port = %d, want default 8883", cfg.AWS.Port)
	}

	if got := cfg.GetLightRuleInterval(); got != 45*time.Minute {
		t.Errorf("GetLightRuleInterval() = %v, want 45m", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
device:
  thing_name: ""
journal:
  path: "/tmp/test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty device.thing_name, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing thing name",
			mutate:  func(c *Config) { c.Device.ThingName = "" },
			wantErr: true,
		},
		{
			name:    "missing endpoint",
			mutate:  func(c *Config) { c.AWS.Endpoint = "" },
			wantErr: true,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.AWS.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.AWS.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.AWS.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "missing root CA",
			mutate:  func(c *Config) { c.AWS.TLS.RootCAFile = "" },
			wantErr: true,
		},
		{
			name:    "missing private key",
			mutate:  func(c *Config) { c.AWS.TLS.KeyFile = "" },
			wantErr: true,
		},
		{
			name:    "zero pump dose",
			mutate:  func(c *Config) { c.Automation.PumpDoseSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "zero reconnect interval",
			mutate:  func(c *Config) { c.Automation.ReconnectIntervalSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "missing journal path",
			mutate:  func(c *Config) { c.Journal.Path = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetDurations(t *testing.T) {
	cfg := &Config{
		AWS: AWSConfig{ConnectTimeout: 10},
		Automation: AutomationConfig{
			ReconnectIntervalSeconds:    5,
			MeasurementsIntervalMinutes: 10,
			LightRuleIntervalMinutes:    30,
			MoistureRuleIntervalMinutes: 15,
			PumpDoseSeconds:             5,
		},
	}

	if got := cfg.GetConnectTimeout(); got != 10*time.Second {
		t.Errorf("GetConnectTimeout() = %v, want 10s", got)
	}

	if got := cfg.GetReconnectInterval(); got != 5*time.Second {
		t.Errorf("GetReconnectInterval() = %v, want 5s", got)
	}

	if got := cfg.GetMeasurementsInterval(); got != 10*time.Minute {
		t.Errorf("GetMeasurementsInterval() = %v, want 10m", got)
	}

	if got := cfg.GetMoistureRuleInterval(); got != 15*time.Minute {
		t.Errorf("GetMoistureRuleInterval() = %v, want 15m", got)
	}

	if got := cfg.GetPumpDose(); got != 5*time.Second {
		t.Errorf("GetPumpDose() = %v, want 5s", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("HERBS_DEVICE_THING_NAME", "herbs-garden-02")
	t.Setenv("HERBS_AWS_ENDPOINT", "other-ats.iot.us-east-1.amazonaws.com")
	t.Setenv("HERBS_AWS_CLIENT_ID", "herbs-garden-02-client")
	t.Setenv("HERBS_AWS_ROOT_CA_FILE", "/secrets/root-ca.pem")
	t.Setenv("HERBS_AWS_CERT_FILE", "/secrets/cert.pem")
	t.Setenv("HERBS_AWS_KEY_FILE", "/secrets/key.pem")
	t.Setenv("HERBS_JOURNAL_PATH", "/custom/path.db")
	t.Setenv("HERBS_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Device.ThingName != "herbs-garden-02" {
		t.Errorf("Device.ThingName = %q, want %q", cfg.Device.ThingName, "herbs-garden-02")
	}

	if cfg.AWS.Endpoint != "other-ats.iot.us-east-1.amazonaws.com" {
		t.Errorf("AWS.Endpoint = %q, want %q", cfg.AWS.Endpoint, "other-ats.iot.us-east-1.amazonaws.com")
	}

	if cfg.AWS.ClientID != "herbs-garden-02-client" {
		t.Errorf("AWS.ClientID = %q, want %q", cfg.AWS.ClientID, "herbs-garden-02-client")
	}

	if cfg.AWS.TLS.RootCAFile != "/secrets/root-ca.pem" {
		t.Errorf("AWS.TLS.RootCAFile = %q, want %q", cfg.AWS.TLS.RootCAFile, "/secrets/root-ca.pem")
	}

	if cfg.Journal.Path != "/custom/path.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "/custom/path.db")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Journal.Path == "" {
		t.Error("defaultConfig should have non-empty Journal.Path")
	}

	if cfg.AWS.Port != 8883 {
		t.Errorf("defaultConfig AWS.Port = %d, want 8883", cfg.AWS.Port)
	}

	if cfg.Automation.MoistureRuleEnabled {
		t.Error("defaultConfig should leave the moisture rule disabled")
	}

	if cfg.Automation.PumpDoseSeconds != 5 {
		t.Errorf("defaultConfig Automation.PumpDoseSeconds = %d, want 5", cfg.Automation.PumpDoseSeconds)
	}
}

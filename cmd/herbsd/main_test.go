package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/config"
	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/logging"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("HERBS_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingJournalPath verifies run fails when the journal path is empty.
func TestRun_MissingJournalPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
device:
  thing_name: "herbs-test"
  simulate: true

aws:
  endpoint: "example-ats.iot.eu-west-2.amazonaws.com"
  client_id: "herbs-test"
  tls:
    root_ca_file: "/tmp/root-ca.pem"
    cert_file: "/tmp/cert.pem"
    key_file: "/tmp/key.pem"

journal:
  path: ""

influxdb:
  enabled: false

logging:
  level: info
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("HERBS_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty journal path")
	}
}

// TestGetConfigPath verifies config path resolution.
func TestGetConfigPath(t *testing.T) {
	t.Setenv("HERBS_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("HERBS_CONFIG", "/custom/config.yaml")
	if got := getConfigPath(); got != "/custom/config.yaml" {
		t.Errorf("getConfigPath() = %q, want %q", got, "/custom/config.yaml")
	}
}

// TestBuildDeviceState verifies driver selection.
func TestBuildDeviceState(t *testing.T) {
	log := logging.Default()

	// Simulated drivers build a working state.
	state, err := buildDeviceState(&config.Config{
		Device: config.DeviceConfig{Simulate: true},
	}, log)
	if err != nil {
		t.Fatalf("buildDeviceState(simulate) error = %v", err)
	}
	if _, err := state.ReadLight(); err != nil {
		t.Errorf("simulated light read error = %v", err)
	}

	// Hardware mode is not wired on this platform and must fail loudly.
	if _, err := buildDeviceState(&config.Config{}, log); err == nil {
		t.Error("buildDeviceState(hardware) should fail")
	}
}

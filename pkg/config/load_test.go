package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
backend:
  mode: snapshot
  snapshot_path: /var/lib/dashboard/snapshot.db
  request_timeout: 10s

server:
  listen_address: "0.0.0.0:9090"

monitor:
  schedule: "@every 1m"
  history_backend: memory

telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Backend.Mode != BackendSnapshot {
		t.Errorf("Backend.Mode = %q, want snapshot", cfg.Backend.Mode)
	}
	if cfg.Backend.RequestTimeout != 10*time.Second {
		t.Errorf("Backend.RequestTimeout = %v, want 10s", cfg.Backend.RequestTimeout)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("Server.ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("Server.ReadTimeout = %v, want default %v", cfg.Server.ReadTimeout, DefaultReadTimeout)
	}
	if !cfg.Monitor.Enabled {
		t.Error("Monitor.Enabled = false, want default true")
	}
	if !cfg.Telemetry.Metrics.Enabled || !cfg.Telemetry.Logging.RedactCredentials {
		t.Error("boolean defaults were lost while decoding")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_ExplicitFalseKept(t *testing.T) {
	path := writeConfig(t, "monitor:\n  enabled: false\ntelemetry:\n  metrics:\n    enabled: false\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Monitor.Enabled || cfg.Telemetry.Metrics.Enabled {
		t.Errorf("explicit false overridden: monitor=%v metrics=%v", cfg.Monitor.Enabled, cfg.Telemetry.Metrics.Enabled)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid YAML", "backend: [", "failed to parse"},
		{"unknown field", "backend:\n  colour: red\n", "failed to parse"},
		{"invalid mode", "backend:\n  mode: http\n", "backend.mode"},
		{"invalid schedule", "monitor:\n  schedule: every day\n", "monitor.schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:8080\"\n")

	t.Setenv("CONGRESS_SERVER_LISTEN_ADDRESS", "0.0.0.0:7000")
	t.Setenv("CONGRESS_BACKEND_MODE", "memory")
	t.Setenv("CONGRESS_MONITOR_ENABLED", "false")
	t.Setenv("CONGRESS_BACKEND_DEBOUNCE_INTERVAL", "250ms")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7000" {
		t.Errorf("Server.ListenAddress = %q, want env value", cfg.Server.ListenAddress)
	}
	if cfg.Backend.Mode != BackendMemory {
		t.Errorf("Backend.Mode = %q, want memory", cfg.Backend.Mode)
	}
	if cfg.Monitor.Enabled {
		t.Error("Monitor.Enabled = true, want env false")
	}
	if cfg.Backend.DebounceInterval != 250*time.Millisecond {
		t.Errorf("Backend.DebounceInterval = %v, want 250ms", cfg.Backend.DebounceInterval)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValue(t *testing.T) {
	t.Setenv("CONGRESS_MONITOR_RETENTION_COUNT", "lots")

	_, err := LoadConfigWithEnvOverrides("")

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Errors[0].Field != "CONGRESS_MONITOR_RETENTION_COUNT" {
		t.Errorf("Field = %q", verr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides_EmptyPath(t *testing.T) {
	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides(\"\") error = %v", err)
	}
	if cfg.Backend.Mode != DefaultBackendMode {
		t.Errorf("Backend.Mode = %q, want default", cfg.Backend.Mode)
	}
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONGRESS_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CONGRESS_SECTION_FIELD (e.g., CONGRESS_SERVER_LISTEN_ADDRESS)
// and always take precedence over the file. An empty path loads defaults
// plus environment.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode YAML from file
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg = Default()
	} else if cfg, err = decodeFile(path); err != nil {
		return nil, err
	}

	envErrs := applyEnvOverrides(cfg, os.LookupEnv)

	if err := Validate(cfg); err != nil {
		var verr ValidationError
		if errors.As(err, &verr) {
			envErrs = append(envErrs, verr.Errors...)
		}
	}
	if len(envErrs) > 0 {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w",
			ValidationError{Errors: envErrs})
	}
	return cfg, nil
}

func decodeFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

type envOverride struct {
	name  string
	apply func(cfg *Config, value string) error
}

func stringVar(set func(*Config, string)) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		set(cfg, v)
		return nil
	}
}

func boolVar(set func(*Config, bool)) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		set(cfg, b)
		return nil
	}
}

func intVar(set func(*Config, int)) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		set(cfg, i)
		return nil
	}
}

func durationVar(set func(*Config, time.Duration)) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		set(cfg, d)
		return nil
	}
}

var envOverrides = []envOverride{
	// Backend overrides
	{"BACKEND_MODE", stringVar(func(c *Config, v string) { c.Backend.Mode = v })},
	{"BACKEND_FIXTURE_PATH", stringVar(func(c *Config, v string) { c.Backend.FixturePath = v })},
	{"BACKEND_WATCH", boolVar(func(c *Config, v bool) { c.Backend.Watch = v })},
	{"BACKEND_DEBOUNCE_INTERVAL", durationVar(func(c *Config, v time.Duration) { c.Backend.DebounceInterval = v })},
	{"BACKEND_SNAPSHOT_PATH", stringVar(func(c *Config, v string) { c.Backend.SnapshotPath = v })},
	{"BACKEND_REQUEST_TIMEOUT", durationVar(func(c *Config, v time.Duration) { c.Backend.RequestTimeout = v })},

	// Server overrides
	{"SERVER_LISTEN_ADDRESS", stringVar(func(c *Config, v string) { c.Server.ListenAddress = v })},
	{"SERVER_READ_TIMEOUT", durationVar(func(c *Config, v time.Duration) { c.Server.ReadTimeout = v })},
	{"SERVER_WRITE_TIMEOUT", durationVar(func(c *Config, v time.Duration) { c.Server.WriteTimeout = v })},
	{"SERVER_IDLE_TIMEOUT", durationVar(func(c *Config, v time.Duration) { c.Server.IdleTimeout = v })},
	{"SERVER_SHUTDOWN_TIMEOUT", durationVar(func(c *Config, v time.Duration) { c.Server.ShutdownTimeout = v })},

	// Monitor overrides
	{"MONITOR_ENABLED", boolVar(func(c *Config, v bool) { c.Monitor.Enabled = v })},
	{"MONITOR_SCHEDULE", stringVar(func(c *Config, v string) { c.Monitor.Schedule = v })},
	{"MONITOR_HISTORY_BACKEND", stringVar(func(c *Config, v string) { c.Monitor.HistoryBackend = v })},
	{"MONITOR_HISTORY_PATH", stringVar(func(c *Config, v string) { c.Monitor.HistoryPath = v })},
	{"MONITOR_RETENTION_COUNT", intVar(func(c *Config, v int) { c.Monitor.RetentionCount = v })},

	// Telemetry overrides
	{"TELEMETRY_LOGGING_LEVEL", stringVar(func(c *Config, v string) { c.Telemetry.Logging.Level = v })},
	{"TELEMETRY_LOGGING_FORMAT", stringVar(func(c *Config, v string) { c.Telemetry.Logging.Format = v })},
	{"TELEMETRY_LOGGING_REDACT_CREDENTIALS", boolVar(func(c *Config, v bool) { c.Telemetry.Logging.RedactCredentials = v })},
	{"TELEMETRY_METRICS_ENABLED", boolVar(func(c *Config, v bool) { c.Telemetry.Metrics.Enabled = v })},
	{"TELEMETRY_METRICS_PATH", stringVar(func(c *Config, v string) { c.Telemetry.Metrics.Path = v })},
	{"TELEMETRY_METRICS_NAMESPACE", stringVar(func(c *Config, v string) { c.Telemetry.Metrics.Namespace = v })},
}

// applyEnvOverrides applies every CONGRESS_* variable that lookup finds.
// Unparseable values are returned as field errors.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) []FieldError {
	var errs []FieldError
	for _, o := range envOverrides {
		name := EnvPrefix + o.name
		val, ok := lookup(name)
		if !ok || val == "" {
			continue
		}
		if err := o.apply(cfg, val); err != nil {
			errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf("invalid value %q: %v", val, err)})
		}
	}
	return errs
}

package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Validate(Default()) error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"invalid backend mode", func(c *Config) { c.Backend.Mode = "rest" }, "backend.mode"},
		{"fixture without path", func(c *Config) { c.Backend.FixturePath = "" }, "backend.fixture_path"},
		{"watch in snapshot mode", func(c *Config) { c.Backend.Mode = BackendSnapshot; c.Backend.Watch = true }, "backend.watch"},
		{"bad listen address", func(c *Config) { c.Server.ListenAddress = "8080" }, "server.listen_address"},
		{"negative timeout", func(c *Config) { c.Server.WriteTimeout = -1 }, "server.write_timeout"},
		{"bad cron", func(c *Config) { c.Monitor.Schedule = "* *" }, "monitor.schedule"},
		{"bad history backend", func(c *Config) { c.Monitor.HistoryBackend = "postgres" }, "monitor.history_backend"},
		{"negative retention", func(c *Config) { c.Monitor.RetentionCount = -1 }, "monitor.retention_count"},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"redact pattern", func(c *Config) {
			c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "x"}}
		}, "telemetry.logging.redact_patterns[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %v, want one for %s", verr.Errors, tt.field)
			}
		})
	}
}

func TestValidate_DisabledMonitorSkipsSchedule(t *testing.T) {
	cfg := Default()
	cfg.Monitor.Enabled = false
	cfg.Monitor.Schedule = "not a schedule"

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("Error() = %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if got := multi.Error(); !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse") {
		t.Errorf("Error() = %q", got)
	}
}
